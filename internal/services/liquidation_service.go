package services

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"asociados/internal/core"
	"asociados/internal/export"
	"asociados/internal/liquidation"
)

// ReportStore is the read-only slice of the repository the reporting screen
// needs: immutable snapshots of the three input collections.
type ReportStore interface {
	ListMembers(ctx context.Context) ([]core.Member, error)
	ListContractors(ctx context.Context) ([]core.Contractor, error)
	ListMovements(ctx context.Context) ([]core.MovementEvent, error)
}

// LiquidationService runs the engine over storage snapshots and caches the
// computed reports. The engine is pure, so a cached report is identical to a
// recomputed one until the underlying collections change; the TTL bounds the
// staleness window.
type LiquidationService struct {
	store     ReportStore
	cache     *gocache.Cache
	exporters map[string]export.ReportExporter
}

func NewLiquidationService(store ReportStore, ttl time.Duration) *LiquidationService {
	return &LiquidationService{
		store:     store,
		cache:     gocache.New(ttl, 2*ttl),
		exporters: make(map[string]export.ReportExporter),
	}
}

// RegisterExporter makes a destination available to Export under the given
// name ("sheets", "email").
func (s *LiquidationService) RegisterExporter(name string, exp export.ReportExporter) {
	s.exporters[name] = exp
}

// Generate computes the liquidation report for the filter.
func (s *LiquidationService) Generate(ctx context.Context, filter liquidation.Filter) (liquidation.Report, error) {
	key := cacheKey(filter)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(liquidation.Report), nil
	}

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return liquidation.Report{}, fmt.Errorf("list members: %w", err)
	}
	contractors, err := s.store.ListContractors(ctx)
	if err != nil {
		return liquidation.Report{}, fmt.Errorf("list contractors: %w", err)
	}
	events, err := s.store.ListMovements(ctx)
	if err != nil {
		return liquidation.Report{}, fmt.Errorf("list movements: %w", err)
	}

	dir := liquidation.NewDirectory(contractors)
	movements := liquidation.Normalize(members, events, dir)
	report := liquidation.Aggregate(movements, filter)

	s.cache.Set(key, report, gocache.DefaultExpiration)
	return report, nil
}

// GenerateCSV computes the report and renders the delimited export.
func (s *LiquidationService) GenerateCSV(ctx context.Context, filter liquidation.Filter) (string, error) {
	report, err := s.Generate(ctx, filter)
	if err != nil {
		return "", err
	}
	return liquidation.ToCSV(report, time.Now()), nil
}

// Export pushes the report to a registered destination.
func (s *LiquidationService) Export(ctx context.Context, filter liquidation.Filter, destination string) error {
	exp, ok := s.exporters[destination]
	if !ok {
		return fmt.Errorf("unknown export destination %q", destination)
	}
	report, err := s.Generate(ctx, filter)
	if err != nil {
		return err
	}
	payload := liquidation.ToCSV(report, time.Now())
	if err := exp.ExportReport(ctx, report, payload); err != nil {
		return fmt.Errorf("export to %s: %w", destination, err)
	}
	return nil
}

// Invalidate drops all cached reports. Called after any write that changes
// the roster or the movement log.
func (s *LiquidationService) Invalidate() {
	s.cache.Flush()
}

func cacheKey(f liquidation.Filter) string {
	return fmt.Sprintf("%d|%d|%s|%s|%s|%s",
		f.Anio, f.Mes, f.Contratista, f.Tipo,
		dateKey(f.Desde), dateKey(f.Hasta))
}

func dateKey(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}
