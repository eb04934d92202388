package liquidation

import (
	"sort"

	"asociados/internal/core"
)

// Normalize converts member records and the historical event log into the
// canonical movement list the rest of the engine works on.
//
// The event log was added after the member table already existed, so members
// whose only evidence of joining is their fecha de alta get an implicit Alta,
// and inactive members with a fecha de baja get an implicit Baja. Explicit
// logged events always take precedence: they carry the contractor and
// responsible as they were at the time, and inferring on top of them would
// double-count. This inference is a compatibility shim; once every lifecycle
// transition is logged it can go away and Normalize becomes a pass-through.
func Normalize(members []core.Member, events []core.MovementEvent, dir *Directory) []Movement {
	byID := make(map[int64]core.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	hasAlta := make(map[int64]bool)
	hasBaja := make(map[int64]bool)
	for _, e := range events {
		switch e.Tipo {
		case core.MovementAlta:
			hasAlta[e.MemberID] = true
		case core.MovementBaja:
			hasBaja[e.MemberID] = true
		}
	}

	var out []Movement
	emit := func(m Movement) {
		m.seq = len(out)
		out = append(out, m)
	}

	for _, m := range members {
		base := memberFields(m)
		if !m.FechaAlta.IsEmpty() && !hasAlta[m.ID] {
			mv := base
			mv.Kind = KindAlta
			mv.Timestamp, mv.Timed = m.FechaAlta.Time, true
			mv.ContractorAfter, _ = dir.Resolve(m.Contratista)
			emit(mv)
		}
		if !m.Activo && !m.FechaBaja.IsEmpty() && !hasBaja[m.ID] {
			mv := base
			mv.Kind = KindBaja
			mv.Timestamp, mv.Timed = m.FechaBaja.Time, true
			mv.ContractorBefore, _ = dir.Resolve(m.Contratista)
			mv.Responsable = m.ResponsableBaja
			emit(mv)
		}
	}

	for _, e := range events {
		m := byID[e.MemberID]
		base := memberFields(m)
		base.MemberID = e.MemberID
		base.Timestamp, base.Timed = e.Fecha.Time, !e.Fecha.IsEmpty()
		base.Responsable = e.Responsable

		switch e.Tipo {
		case core.MovementAlta:
			mv := base
			mv.Kind = KindAlta
			mv.ContractorAfter = resolveFirst(dir, e.ContratistaNuevo, m.Contratista)
			emit(mv)
		case core.MovementBaja:
			mv := base
			mv.Kind = KindBaja
			mv.ContractorBefore = resolveFirst(dir, e.ContratistaAnterior, m.Contratista)
			emit(mv)
		case core.MovementCambioContratista:
			// Zero-sum pair: one egress against the prior contractor, one
			// ingress against the new one, same timestamp and responsible.
			// Both halves share a pair id so the summary can count the
			// transfer once even when several land on the same day.
			pairID := len(out)

			outMv := base
			outMv.Kind = KindTransferOut
			outMv.ContractorBefore, _ = dir.Resolve(e.ContratistaAnterior)
			outMv.pair = pairID
			emit(outMv)

			inMv := base
			inMv.Kind = KindTransferIn
			inMv.ContractorAfter, _ = dir.Resolve(e.ContratistaNuevo)
			inMv.pair = pairID
			emit(inMv)
		}
	}

	sortMovements(out)
	return out
}

// sortMovements orders ascending by timestamp with ties broken by emission
// order, which keeps aggregation deterministic. Untimed movements sort before
// everything: they are treated as having occurred before any query window.
func sortMovements(ms []Movement) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Timed != b.Timed {
			return !a.Timed
		}
		if a.Timed && !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.seq < b.seq
	})
}

func memberFields(m core.Member) Movement {
	name := ""
	if m.Nombre != "" || m.Apellido != "" {
		name = m.FullName()
	}
	return Movement{
		MemberID:   m.ID,
		MemberName: name,
		Documento:  m.Documento,
		Legajo:     m.Legajo,
		FechaAlta:  m.FechaAlta,
		FechaBaja:  m.FechaBaja,
	}
}

func resolveFirst(dir *Directory, refs ...core.ContractorRef) core.Contractor {
	for _, ref := range refs {
		if c, ok := dir.Resolve(ref); ok {
			return c
		}
	}
	return core.Contractor{}
}
