// Tolerant decoding for member and movement records coming from the legacy
// event feed. The source collections mix field-name spellings (snake and
// camel variants of the same field) and store contractor references as a raw
// id, a raw name, or an embedded object. Decoding prefers the canonical
// snake-style field when both spellings are present.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"2006-01-02 15:04:05",
}

// ParseDate attempts the date layouts seen in the legacy feed. The bool is
// false for empty or unparsable input; callers degrade such records instead
// of failing the batch.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, true
		}
	}
	return Date{}, false
}

// UnmarshalJSON accepts a string ("c1" or "Limpieza Sur") or an embedded
// {"id","nombre"} object.
func (r *ContractorRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		// A bare string can be an id or a name; resolution decides later.
		*r = ContractorRef{ID: strings.TrimSpace(s), Nombre: strings.TrimSpace(s)}
		return nil
	}
	var obj struct {
		ID     json.RawMessage `json:"id"`
		Nombre string          `json:"nombre"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = ContractorRef{ID: rawToString(obj.ID), Nombre: strings.TrimSpace(obj.Nombre)}
	return nil
}

func (r ContractorRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID     string `json:"id,omitempty"`
		Nombre string `json:"nombre,omitempty"`
	}{ID: r.ID, Nombre: r.Nombre})
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = pickInt(raw, "id")
	m.Nombre = pickString(raw, "nombre")
	m.Apellido = pickString(raw, "apellido")
	m.Documento = pickString(raw, "documento", "dni")
	m.Legajo = pickString(raw, "legajo", "nro_legajo", "numeroLegajo")
	m.FechaAlta = pickDate(raw, "fecha_alta", "fechaAlta", "fecha_ingreso")
	m.FechaBaja = pickDate(raw, "fecha_baja", "fechaBaja", "fecha_egreso")
	m.ResponsableBaja = pickString(raw, "responsable_baja", "responsableBaja")
	m.Contratista = pickContractorRef(raw, "contratista", "contratista_id", "contratistaId")
	m.Monotributo = pickBool(raw, "monotributo", false)
	m.Activo = pickBool(raw, "activo", true)
	return nil
}

func (e *MovementEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = pickInt(raw, "id")
	e.Tipo = MovementType(strings.ToLower(pickString(raw, "tipo", "tipo_movimiento", "tipoMovimiento")))
	e.MemberID = pickInt(raw, "asociado_id", "asociadoId", "member_id")
	e.Fecha = pickDate(raw, "fecha", "fecha_movimiento", "fechaMovimiento")
	e.ContratistaAnterior = pickContractorRef(raw, "contratista_anterior", "contratistaAnterior")
	e.ContratistaNuevo = pickContractorRef(raw, "contratista_nuevo", "contratistaNuevo", "contratista")
	e.Responsable = pickString(raw, "responsable", "responsable_movimiento")
	return nil
}

func pickString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s := rawToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func pickInt(raw map[string]json.RawMessage, keys ...string) int64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var n int64
		if err := json.Unmarshal(v, &n); err == nil {
			return n
		}
		if i, err := strconv.ParseInt(rawToString(v), 10, 64); err == nil {
			return i
		}
	}
	return 0
}

func pickBool(raw map[string]json.RawMessage, key string, def bool) bool {
	v, ok := raw[key]
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	switch strings.ToLower(rawToString(v)) {
	case "1", "true", "si", "sí":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}

func pickDate(raw map[string]json.RawMessage, keys ...string) Date {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if d, ok := ParseDate(rawToString(v)); ok {
				return d
			}
		}
	}
	return Date{}
}

func pickContractorRef(raw map[string]json.RawMessage, keys ...string) ContractorRef {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var ref ContractorRef
		if err := json.Unmarshal(v, &ref); err == nil && !ref.IsZero() {
			return ref
		}
	}
	return ContractorRef{}
}

// rawToString unquotes JSON strings and renders numbers as-is, so numeric
// ids stored without quotes still resolve.
func rawToString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	t := strings.TrimSpace(string(v))
	if t == "null" {
		return ""
	}
	return t
}
