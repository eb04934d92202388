package liquidation

import (
	"fmt"
	"sort"
	"time"

	"asociados/internal/core"
)

// Aggregate applies the caller's filter to the normalized movement list and
// groups the result by resolved contractor name. The movement list must be
// the output of Normalize (sorted); Aggregate never mutates it.
//
// An empty filtered set, including an inverted date range or a contractor
// name unknown to the directory, yields a valid all-zero report, never an
// error.
func Aggregate(movements []Movement, filter Filter) Report {
	start, end, ok := filter.window()
	report := Report{
		Year:        filter.Anio,
		Month:       filter.Mes,
		PeriodLabel: filter.periodLabel(),
	}
	if !ok {
		report.ByContractor = []ContractorRow{}
		report.Movements = []Movement{}
		return report
	}

	contractorKey := foldKey(filter.Contratista)

	var kept []Movement
	for _, m := range movements {
		if !m.Timed || m.Timestamp.Before(start) || !m.Timestamp.Before(end) {
			continue
		}
		if !filter.matchKind(m.Kind) {
			continue
		}
		if contractorKey != "" && foldKey(m.Bucket()) != contractorKey {
			continue
		}
		kept = append(kept, m)
	}

	if len(kept) == 0 {
		report.ByContractor = []ContractorRow{}
		report.Movements = []Movement{}
		return report
	}

	rows := make(map[string]*ContractorRow)
	transferPairs := make(map[string]bool)
	for _, m := range kept {
		bucket := m.Bucket()
		row, ok := rows[bucket]
		if !ok {
			row = &ContractorRow{ContractorName: bucket, Period: report.PeriodLabel}
			rows[bucket] = row
		}
		switch m.Kind {
		case KindAlta:
			row.Altas++
			report.Summary.TotalAltas++
		case KindBaja:
			row.Bajas++
			report.Summary.TotalBajas++
		case KindTransferIn:
			row.TransfersIn++
			transferPairs[transferKey(m)] = true
		case KindTransferOut:
			row.TransfersOut++
			transferPairs[transferKey(m)] = true
		}
	}
	report.Summary.TotalTransfers = len(transferPairs)

	report.ByContractor = make([]ContractorRow, 0, len(rows))
	for _, row := range rows {
		// Always recomputed from the four counters, never stored.
		row.NetBalance = row.Altas + row.TransfersIn - row.Bajas - row.TransfersOut
		report.ByContractor = append(report.ByContractor, *row)
	}
	sort.Slice(report.ByContractor, func(i, j int) bool {
		return report.ByContractor[i].ContractorName < report.ByContractor[j].ContractorName
	})
	report.Movements = kept

	// Cooperative-wide headcount at the period boundaries, replayed from the
	// full movement list regardless of kind/contractor filters.
	report.Summary.ActiveAtPeriodStart = ActiveAsOf(start, movements)
	report.Summary.ActiveAtPeriodEnd = ActiveAsOf(end, movements)

	return report
}

// window returns the half-open instant range [start, end) the filter selects.
// An explicit Desde/Hasta pair wins over the year/month selection and is
// inclusive of Hasta's whole day. ok is false for an inverted range.
func (f Filter) window() (start, end time.Time, ok bool) {
	if !f.Desde.IsEmpty() || !f.Hasta.IsEmpty() {
		start = f.Desde.Time
		if f.Hasta.IsEmpty() {
			end = maxInstant
		} else {
			end = f.Hasta.AddDate(0, 0, 1)
		}
		if !start.Before(end) {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}
	if f.Mes >= 1 && f.Mes <= 12 {
		start = time.Date(f.Anio, time.Month(f.Mes), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	}
	start = time.Date(f.Anio, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0), true
}

var maxInstant = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func (f Filter) matchKind(k MovementKind) bool {
	switch f.Tipo {
	case "", core.MovementTodos:
		return true
	case core.MovementAlta:
		return k == KindAlta
	case core.MovementBaja:
		return k == KindBaja
	case core.MovementCambioContratista:
		return k == KindTransferIn || k == KindTransferOut
	}
	return false
}

func (f Filter) periodLabel() string {
	if f.Mes >= 1 && f.Mes <= 12 {
		return fmt.Sprintf("%02d/%d", f.Mes, f.Anio)
	}
	return fmt.Sprintf("%d", f.Anio)
}

// transferKey pairs the two halves of a cambio_contratista so a transfer is
// counted once in the summary even when both rows are present. The pair id
// keeps two same-day transfers of the same member distinct.
func transferKey(m Movement) string {
	return fmt.Sprintf("%d|%d", m.MemberID, m.pair)
}
