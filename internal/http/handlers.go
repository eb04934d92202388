package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"asociados/internal/core"
	applog "asociados/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List members failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list members")
		return
	}
	if members == nil {
		members = []core.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

type createMemberRequest struct {
	Nombre      string             `json:"nombre"`
	Apellido    string             `json:"apellido"`
	Documento   string             `json:"documento"`
	Legajo      string             `json:"legajo"`
	FechaAlta   string             `json:"fecha_alta"`
	Contratista core.ContractorRef `json:"contratista"`
	Monotributo bool               `json:"monotributo"`
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	fecha, ok := core.ParseDate(req.FechaAlta)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid fecha_alta")
		return
	}

	id, err := s.members.CreateMember(r.Context(), core.Member{
		Nombre:      req.Nombre,
		Apellido:    req.Apellido,
		Documento:   req.Documento,
		Legajo:      req.Legajo,
		FechaAlta:   fecha,
		Contratista: req.Contratista,
		Monotributo: req.Monotributo,
		Activo:      true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.liq.Invalidate()
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

type bajaRequest struct {
	Fecha       string `json:"fecha"`
	Responsable string `json:"responsable"`
}

func (s *Server) handleDeactivateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req bajaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	fecha, okDate := core.ParseDate(req.Fecha)
	if !okDate {
		writeError(w, http.StatusBadRequest, "invalid fecha")
		return
	}

	if err := s.members.DeactivateMember(r.Context(), id, fecha, req.Responsable); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.liq.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "activo": false})
}

type transferRequest struct {
	Contratista core.ContractorRef `json:"contratista"`
	Fecha       string             `json:"fecha"`
	Responsable string             `json:"responsable"`
}

func (s *Server) handleTransferMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	fecha, okDate := core.ParseDate(req.Fecha)
	if !okDate {
		writeError(w, http.StatusBadRequest, "invalid fecha")
		return
	}

	if err := s.members.TransferMember(r.Context(), id, req.Contratista, fecha, req.Responsable); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.liq.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleListContractors(w http.ResponseWriter, r *http.Request) {
	contractors, err := s.store.ListContractors(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List contractors failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list contractors")
		return
	}
	if contractors == nil {
		contractors = []core.Contractor{}
	}
	writeJSON(w, http.StatusOK, contractors)
}

func (s *Server) handleCreateContractor(w http.ResponseWriter, r *http.Request) {
	var c core.Contractor
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Nombre) == "" {
		writeError(w, http.StatusBadRequest, "id and nombre are required")
		return
	}
	if err := s.store.CreateContractor(r.Context(), c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.liq.Invalidate()
	writeJSON(w, http.StatusCreated, c)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
