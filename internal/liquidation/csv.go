package liquidation

import (
	"strconv"
	"strings"
	"time"
)

// exportDateFormat is the office convention (día/mes/año), not ISO: the
// export is read by administration staff in spreadsheets, not by machines.
const exportDateFormat = "02/01/2006"

// csvColumns is a fixed external contract: the consuming spreadsheets depend
// on column position, not header text.
var csvColumns = []string{
	"Fecha",
	"Tipo de movimiento",
	"Asociado",
	"Documento",
	"Legajo",
	"Contratista",
	"Fecha de alta",
	"Fecha de baja",
	"Días trabajados",
	"Responsable",
}

var kindLabels = map[MovementKind]string{
	KindAlta:        "Alta",
	KindBaja:        "Baja",
	KindTransferIn:  "Cambio de contratista (ingreso)",
	KindTransferOut: "Cambio de contratista (egreso)",
}

// ToCSV renders the report as delimited text. Every field is quoted and
// internal quotes are doubled. Días trabajados runs from the member's alta to
// its baja for Baja rows, and to now for members still active, so the
// exported figure for active members depends on when the export runs.
func ToCSV(report Report, now time.Time) string {
	var b strings.Builder
	writeRow(&b, csvColumns)
	for _, m := range report.Movements {
		writeRow(&b, []string{
			formatDate(m.Timestamp, m.Timed),
			kindLabels[m.Kind],
			m.MemberName,
			m.Documento,
			m.Legajo,
			m.Bucket(),
			formatDate(m.FechaAlta.Time, !m.FechaAlta.IsEmpty()),
			bajaOrActivo(m),
			diasTrabajados(m, now),
			m.Responsable,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func formatDate(t time.Time, present bool) string {
	if !present || t.IsZero() {
		return ""
	}
	return t.Format(exportDateFormat)
}

func bajaOrActivo(m Movement) string {
	if m.FechaBaja.IsEmpty() {
		return "ACTIVO"
	}
	return m.FechaBaja.Format(exportDateFormat)
}

func diasTrabajados(m Movement, now time.Time) string {
	if m.FechaAlta.IsEmpty() {
		return ""
	}
	hasta := now
	if m.Kind == KindBaja && !m.FechaBaja.IsEmpty() {
		hasta = m.FechaBaja.Time
	}
	days := int(hasta.Sub(m.FechaAlta.Time).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return strconv.Itoa(days)
}
