// Package mailgun mails the liquidation export to the administration inbox
// as a CSV attachment.
package mailgun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	ports "asociados/internal/export"
	"asociados/internal/liquidation"
)

type Sender struct {
	mg        *mailgun.MailgunImpl
	sender    string
	recipient string
}

var _ ports.ReportExporter = (*Sender)(nil)

func New(domain, apiKey, sender, recipient string) *Sender {
	return &Sender{
		mg:        mailgun.NewMailgun(domain, apiKey),
		sender:    sender,
		recipient: recipient,
	}
}

func (s *Sender) ExportReport(ctx context.Context, report liquidation.Report, payload string) error {
	subject := fmt.Sprintf("Liquidación de asociados %s", report.PeriodLabel)
	body := fmt.Sprintf(
		"Liquidación del período %s.\n\nAltas: %d\nBajas: %d\nTransferencias: %d\nActivos al cierre: %d\n\nEl detalle completo está en el archivo adjunto.",
		report.PeriodLabel,
		report.Summary.TotalAltas,
		report.Summary.TotalBajas,
		report.Summary.TotalTransfers,
		report.Summary.ActiveAtPeriodEnd,
	)

	message := s.mg.NewMessage(s.sender, subject, body, s.recipient)
	filename := fmt.Sprintf("liquidacion_%s.csv", strings.ReplaceAll(report.PeriodLabel, "/", "-"))
	message.AddBufferAttachment(filename, []byte(payload))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := s.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send liquidation email: %w", err)
	}
	return nil
}
