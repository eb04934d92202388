package services

import (
	"context"
	"fmt"
	"log/slog"

	"asociados/internal/core"
	"asociados/internal/liquidation"
)

// MemberStore is the slice of the repository the member flows need.
type MemberStore interface {
	CreateMember(ctx context.Context, m core.Member) (int64, error)
	GetMember(ctx context.Context, id int64) (core.Member, error)
	DeactivateMember(ctx context.Context, id int64, fecha core.Date, responsable string) error
	UpdateMemberContractor(ctx context.Context, id int64, c core.Contractor) error
	ListContractors(ctx context.Context) ([]core.Contractor, error)
}

// MovementPublisher pushes lifecycle events onto the movement queue. The
// worker on the other side is the single writer to the movement log.
type MovementPublisher interface {
	PublishMovement(ctx context.Context, e core.MovementEvent) error
}

// MemberService orchestrates member lifecycle operations: persist the roster
// change first, then publish the matching movement event. Publishing is
// best-effort: the roster write is the source the Normalizer can fall back
// to, so a lost event degrades to an inferred movement instead of data loss.
type MemberService struct {
	store     MemberStore
	publisher MovementPublisher
}

func NewMemberService(store MemberStore, publisher MovementPublisher) *MemberService {
	return &MemberService{
		store:     store,
		publisher: publisher,
	}
}

// CreateMember saves a new asociado and publishes its alta event.
func (s *MemberService) CreateMember(ctx context.Context, m core.Member) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("validate member: %w", err)
	}

	id, err := s.store.CreateMember(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("save member: %w", err)
	}

	s.publish(ctx, core.MovementEvent{
		Tipo:             core.MovementAlta,
		MemberID:         id,
		Fecha:            m.FechaAlta,
		ContratistaNuevo: m.Contratista,
	})

	return id, nil
}

// DeactivateMember records the baja on the roster and publishes the event.
func (s *MemberService) DeactivateMember(ctx context.Context, id int64, fecha core.Date, responsable string) error {
	if fecha.IsEmpty() {
		return core.ErrMissingFechaBaja
	}
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return fmt.Errorf("load member: %w", err)
	}

	if err := s.store.DeactivateMember(ctx, id, fecha, responsable); err != nil {
		return fmt.Errorf("deactivate member: %w", err)
	}

	s.publish(ctx, core.MovementEvent{
		Tipo:                core.MovementBaja,
		MemberID:            id,
		Fecha:               fecha,
		ContratistaAnterior: m.Contratista,
		Responsable:         responsable,
	})

	return nil
}

// TransferMember reassigns the member to another contractor and publishes
// the cambio_contratista event with both sides of the transfer.
func (s *MemberService) TransferMember(ctx context.Context, id int64, nuevo core.ContractorRef, fecha core.Date, responsable string) error {
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return fmt.Errorf("load member: %w", err)
	}

	contractors, err := s.store.ListContractors(ctx)
	if err != nil {
		return fmt.Errorf("load contractors: %w", err)
	}
	dir := liquidation.NewDirectory(contractors)
	resolved, ok := dir.Resolve(nuevo)
	if !ok {
		return fmt.Errorf("contratista %q: %w", nuevo.Nombre, core.ErrMissingContratista)
	}

	if err := s.store.UpdateMemberContractor(ctx, id, resolved); err != nil {
		return fmt.Errorf("update member contractor: %w", err)
	}

	s.publish(ctx, core.MovementEvent{
		Tipo:                core.MovementCambioContratista,
		MemberID:            id,
		Fecha:               fecha,
		ContratistaAnterior: m.Contratista,
		ContratistaNuevo:    core.ContractorRef{ID: resolved.ID, Nombre: resolved.Nombre},
		Responsable:         responsable,
	})

	return nil
}

func (s *MemberService) publish(ctx context.Context, e core.MovementEvent) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Movement publisher not available, skipping event",
			"tipo", e.Tipo, "asociado_id", e.MemberID)
		return
	}
	if err := s.publisher.PublishMovement(ctx, e); err != nil {
		// Roster write already succeeded; the Normalizer infers the
		// movement from member fields if the event never lands.
		slog.ErrorContext(ctx, "Failed to publish movement",
			"tipo", e.Tipo, "asociado_id", e.MemberID, "error", err)
	}
}
