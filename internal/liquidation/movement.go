// Package liquidation reconstructs membership movements (altas, bajas,
// contractor transfers) for an arbitrary historical period and produces the
// per-contractor net-movement report used for billing. Every function here is
// pure: the caller hands in materialized member and contractor collections and
// gets a report back, with no I/O and no retained state.
package liquidation

import (
	"time"

	"asociados/internal/core"
)

const (
	KindAlta        MovementKind = "alta"
	KindBaja        MovementKind = "baja"
	KindTransferIn  MovementKind = "transfer_in"
	KindTransferOut MovementKind = "transfer_out"
)

// SinAsignar is the bucket for movements whose contractor reference does not
// resolve against the directory. Unresolved movements are never dropped, so
// the report totals still balance.
const SinAsignar = "Sin asignar"

type (
	MovementKind string

	// Movement is the canonical engine-internal representation. A
	// cambio_contratista source event expands into exactly one TransferOut
	// and one TransferIn sharing timestamp and responsible.
	Movement struct {
		Timestamp time.Time `json:"timestamp"`
		// Timed is false for movements whose source carried no parsable
		// date. They are excluded from period-bounded views but counted in
		// as-of-now snapshots, as if they happened before any window.
		Timed bool `json:"timed"`

		Kind       MovementKind `json:"kind"`
		MemberID   int64        `json:"memberId"`
		MemberName string       `json:"memberName"`
		Documento  string       `json:"documento"`
		Legajo     string       `json:"legajo"`

		// Member lifecycle dates, carried for the export's days-worked column.
		FechaAlta core.Date `json:"fechaAlta"`
		FechaBaja core.Date `json:"fechaBaja"`

		// Resolved contractors. Before is set for Baja and TransferOut,
		// After for Alta and TransferIn. Zero values mean unresolved.
		ContractorBefore core.Contractor `json:"contractorBefore"`
		ContractorAfter  core.Contractor `json:"contractorAfter"`

		Responsable string `json:"responsable"`

		seq int
		// pair links the two halves of a transfer. Both rows of one
		// cambio_contratista share the value; no other pair reuses it.
		pair int
	}

	Summary struct {
		TotalAltas          int `json:"totalAltas"`
		TotalBajas          int `json:"totalBajas"`
		TotalTransfers      int `json:"totalTransfers"`
		ActiveAtPeriodStart int `json:"activeAtPeriodStart"`
		ActiveAtPeriodEnd   int `json:"activeAtPeriodEnd"`
	}

	ContractorRow struct {
		ContractorName string `json:"contractorName"`
		Period         string `json:"period"`
		Altas          int    `json:"altas"`
		Bajas          int    `json:"bajas"`
		TransfersIn    int    `json:"transfersIn"`
		TransfersOut   int    `json:"transfersOut"`
		NetBalance     int    `json:"netBalance"`
	}

	Report struct {
		Year         int             `json:"year"`
		Month        int             `json:"month,omitempty"`
		PeriodLabel  string          `json:"periodLabel"`
		Summary      Summary         `json:"summary"`
		ByContractor []ContractorRow `json:"byContractor"`
		Movements    []Movement      `json:"movements"`
	}

	// Filter is the caller's period/contractor/type selection. Mes 0 means
	// the whole calendar year. Desde/Hasta, when set, override the
	// year/month window (inclusive on both ends).
	Filter struct {
		Anio        int
		Mes         int
		Contratista string
		Tipo        core.MovementType
		Desde       core.Date
		Hasta       core.Date
	}
)

// Bucket returns the resolved contractor name a movement is accounted
// under: the departing contractor for Baja/TransferOut, the arriving one for
// Alta/TransferIn, SinAsignar when unresolved.
func (m Movement) Bucket() string {
	var c core.Contractor
	switch m.Kind {
	case KindBaja, KindTransferOut:
		c = m.ContractorBefore
	default:
		c = m.ContractorAfter
	}
	if c.Nombre == "" {
		return SinAsignar
	}
	return c.Nombre
}
