package core

import (
	"errors"
	"strings"
	"time"
)

const (
	MovementAlta              MovementType = "alta"
	MovementBaja              MovementType = "baja"
	MovementCambioContratista MovementType = "cambio_contratista"
	MovementTodos             MovementType = "todos"
)

type (
	MovementType string

	Date struct {
		time.Time
	}

	// Contractor is a directory entry. IDs are unique; names are treated
	// as unique only as a resolution fallback.
	Contractor struct {
		ID     string
		Nombre string
	}

	// ContractorRef is a reference to a contractor as it appears on member
	// and movement records: a raw id, a raw name, or both when the source
	// stored an embedded object. Resolution lives in the liquidation package.
	ContractorRef struct {
		ID     string
		Nombre string
	}

	Member struct {
		ID              int64
		Nombre          string
		Apellido        string
		Documento       string
		Legajo          string
		FechaAlta       Date
		FechaBaja       Date
		ResponsableBaja string
		Contratista     ContractorRef
		Activo          bool
		Monotributo     bool
	}

	// MovementEvent is one entry of the lifecycle event log. Explicit events
	// take precedence over the implicit alta/baja inferred from member fields.
	MovementEvent struct {
		ID                  int64
		Tipo                MovementType
		MemberID            int64
		Fecha               Date
		ContratistaAnterior ContractorRef
		ContratistaNuevo    ContractorRef
		Responsable         string
	}
)

var (
	ErrEmptyNombre        = errors.New("empty nombre")
	ErrEmptyApellido      = errors.New("empty apellido")
	ErrEmptyDocumento     = errors.New("empty documento")
	ErrMissingFechaAlta   = errors.New("missing fecha de alta")
	ErrMissingFechaBaja   = errors.New("missing fecha de baja")
	ErrInvalidTipo        = errors.New("invalid movement type")
	ErrMissingContratista = errors.New("missing contratista")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date is absent (zero time).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (r ContractorRef) IsZero() bool {
	return strings.TrimSpace(r.ID) == "" && strings.TrimSpace(r.Nombre) == ""
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Nombre) == "" {
		return ErrEmptyNombre
	}
	if strings.TrimSpace(m.Apellido) == "" {
		return ErrEmptyApellido
	}
	if strings.TrimSpace(m.Documento) == "" {
		return ErrEmptyDocumento
	}
	if m.FechaAlta.IsEmpty() {
		return ErrMissingFechaAlta
	}
	return nil
}

// FullName renders "Apellido, Nombre" the way the listing screens show it.
func (m Member) FullName() string {
	return strings.TrimSpace(m.Apellido) + ", " + strings.TrimSpace(m.Nombre)
}

func (e MovementEvent) Validate() error {
	switch e.Tipo {
	case MovementAlta, MovementBaja:
	case MovementCambioContratista:
		if e.ContratistaNuevo.IsZero() {
			return ErrMissingContratista
		}
	default:
		return ErrInvalidTipo
	}
	return nil
}
