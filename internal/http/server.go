package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"asociados/internal/core"
	applog "asociados/internal/log"
	"asociados/internal/services"
)

// DirectoryStore is the read/write slice of the repository the CRUD screens
// use directly, without going through the member lifecycle service.
type DirectoryStore interface {
	ListMembers(ctx context.Context) ([]core.Member, error)
	ListContractors(ctx context.Context) ([]core.Contractor, error)
	CreateContractor(ctx context.Context, c core.Contractor) error
}

type Server struct {
	httpServer *http.Server
	members    *services.MemberService
	liq        *services.LiquidationService
	store      DirectoryStore
	logger     *applog.Logger
	limiter    *rate.Limiter
}

func NewServer(addr string, members *services.MemberService, liq *services.LiquidationService, store DirectoryStore, logger *applog.Logger, perSecond, burst int) *Server {
	s := &Server{
		members: members,
		liq:     liq,
		store:   store,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}

	r := chi.NewRouter()
	r.Use(applog.Middleware(logger))
	r.Use(s.rateLimit)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/asociados", s.handleListMembers)
		r.Post("/asociados", s.handleCreateMember)
		r.Post("/asociados/{id}/baja", s.handleDeactivateMember)
		r.Post("/asociados/{id}/cambio-contratista", s.handleTransferMember)

		r.Get("/contratistas", s.handleListContractors)
		r.Post("/contratistas", s.handleCreateContractor)

		r.Get("/liquidacion", s.handleLiquidacion)
		r.Get("/liquidacion/csv", s.handleLiquidacionCSV)
		r.Post("/liquidacion/export", s.handleLiquidacionExport)
	})

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
