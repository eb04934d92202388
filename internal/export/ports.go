package export

import (
	"context"

	"asociados/internal/liquidation"
)

// Ports for outbound report delivery. The engine itself never does I/O; the
// host hands its output to one of these collaborators.
type (
	// ReportExporter pushes an aggregated report to an external destination
	// (a spreadsheet, an inbox). The delimited payload is the engine's CSV
	// output so every destination receives identical bytes.
	ReportExporter interface {
		ExportReport(ctx context.Context, report liquidation.Report, payload string) error
	}
)
