package amqp

import (
	"encoding/json"

	"asociados/internal/core"
)

// Movement messages carry the lifecycle event itself. Several screens of the
// membership application publish them; the worker is the single writer that
// appends them to the movimientos table. The body is decoded through
// core.MovementEvent's tolerant unmarshalling, so feeds that still use legacy
// field spellings keep working.

func MarshalMovement(e core.MovementEvent) ([]byte, error) {
	return json.Marshal(struct {
		Tipo                string             `json:"tipo"`
		AsociadoID          int64              `json:"asociado_id"`
		Fecha               string             `json:"fecha,omitempty"`
		ContratistaAnterior core.ContractorRef `json:"contratista_anterior,omitempty"`
		ContratistaNuevo    core.ContractorRef `json:"contratista_nuevo,omitempty"`
		Responsable         string             `json:"responsable,omitempty"`
	}{
		Tipo:                string(e.Tipo),
		AsociadoID:          e.MemberID,
		Fecha:               fechaString(e.Fecha),
		ContratistaAnterior: e.ContratistaAnterior,
		ContratistaNuevo:    e.ContratistaNuevo,
		Responsable:         e.Responsable,
	})
}

func UnmarshalMovement(data []byte) (*core.MovementEvent, error) {
	var e core.MovementEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func fechaString(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}
