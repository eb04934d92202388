package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"asociados/internal/core"
	"asociados/internal/liquidation"
	applog "asociados/internal/log"
)

func (s *Server) handleLiquidacion(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.liq.Generate(r.Context(), filter)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not generate report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLiquidacionCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	csv, err := s.liq.GenerateCSV(r.Context(), filter)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not generate report")
		return
	}

	name := fmt.Sprintf("liquidacion_%d", filter.Anio)
	if filter.Mes >= 1 && filter.Mes <= 12 {
		name = fmt.Sprintf("liquidacion_%d_%02d", filter.Anio, filter.Mes)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

func (s *Server) handleLiquidacionExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	destination := r.URL.Query().Get("destination")
	if destination == "" {
		destination = "sheets"
	}

	if err := s.liq.Export(r.Context(), filter, destination); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report export failed", "destination", destination, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exported", "destination": destination})
}

// parseFilter validates the report query parameters. anio is mandatory; an
// explicit desde/hasta pair narrows the period further and must not be
// inverted.
func parseFilter(q url.Values) (liquidation.Filter, error) {
	var f liquidation.Filter

	anio, err := strconv.Atoi(q.Get("anio"))
	if err != nil || anio < 1900 || anio > 9999 {
		return f, fmt.Errorf("anio is required and must be a four digit year")
	}
	f.Anio = anio

	if raw := q.Get("mes"); raw != "" {
		mes, err := strconv.Atoi(raw)
		if err != nil || mes < 1 || mes > 12 {
			return f, fmt.Errorf("mes must be between 1 and 12")
		}
		f.Mes = mes
	}

	if raw := q.Get("tipo"); raw != "" {
		tipo := core.MovementType(strings.ToLower(raw))
		switch tipo {
		case core.MovementAlta, core.MovementBaja, core.MovementCambioContratista, core.MovementTodos:
			f.Tipo = tipo
		default:
			return f, fmt.Errorf("tipo %q is not valid", raw)
		}
	}

	f.Contratista = q.Get("contratista")

	if raw := q.Get("desde"); raw != "" {
		d, ok := core.ParseDate(raw)
		if !ok {
			return f, fmt.Errorf("desde %q is not a valid date", raw)
		}
		f.Desde = d
	}
	if raw := q.Get("hasta"); raw != "" {
		d, ok := core.ParseDate(raw)
		if !ok {
			return f, fmt.Errorf("hasta %q is not a valid date", raw)
		}
		f.Hasta = d
	}
	if !f.Desde.IsEmpty() && !f.Hasta.IsEmpty() && f.Hasta.Before(f.Desde.Time) {
		return f, fmt.Errorf("desde must not be after hasta")
	}

	return f, nil
}
