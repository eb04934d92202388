package core

import (
	"encoding/json"
	"testing"
)

func TestMemberValidate(t *testing.T) {
	good := Member{
		Nombre:    "Ana",
		Apellido:  "Suárez",
		Documento: "30111222",
		FechaAlta: NewDate(2024, 1, 10),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Member{
		{Apellido: "Suárez", Documento: "30111222", FechaAlta: NewDate(2024, 1, 10)},
		{Nombre: "Ana", Documento: "30111222", FechaAlta: NewDate(2024, 1, 10)},
		{Nombre: "Ana", Apellido: "Suárez", FechaAlta: NewDate(2024, 1, 10)},
		{Nombre: "Ana", Apellido: "Suárez", Documento: "30111222"},
	}
	for i, m := range bads {
		if err := m.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMovementEventValidate(t *testing.T) {
	cases := []struct {
		e  MovementEvent
		ok bool
	}{
		{MovementEvent{Tipo: MovementAlta}, true},
		{MovementEvent{Tipo: MovementBaja}, true},
		{MovementEvent{Tipo: MovementCambioContratista, ContratistaNuevo: ContractorRef{ID: "c2"}}, true},
		{MovementEvent{Tipo: MovementCambioContratista}, false},
		{MovementEvent{Tipo: "despido"}, false},
	}
	for i, tc := range cases {
		err := tc.e.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-10", true},
		{"10/01/2024", true},
		{"2024-01-10T00:00:00Z", true},
		{"", false},
		{"no es fecha", false},
	}
	for _, tc := range cases {
		d, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseDate(%q) ok=%v, want %v", tc.in, ok, tc.ok)
		}
		if ok && (d.Year() != 2024 || int(d.Month()) != 1 || d.Day() != 10) {
			t.Fatalf("ParseDate(%q) = %v", tc.in, d)
		}
	}
}

func TestMemberUnmarshalVariantSpellings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string // expected fecha alta, 2006-01-02
	}{
		{"snake", `{"nombre":"Ana","apellido":"Suárez","documento":"1","fecha_alta":"2024-01-10"}`, "2024-01-10"},
		{"camel fallback", `{"nombre":"Ana","apellido":"Suárez","documento":"1","fechaAlta":"2024-02-20"}`, "2024-02-20"},
		{"snake wins over camel", `{"nombre":"Ana","apellido":"Suárez","documento":"1","fecha_alta":"2024-01-10","fechaAlta":"2023-05-05"}`, "2024-01-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m Member
			if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := m.FechaAlta.Format("2006-01-02"); got != tc.want {
				t.Fatalf("fecha alta = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestContractorRefUnmarshalForms(t *testing.T) {
	cases := []struct {
		in         string
		id, nombre string
	}{
		{`"c1"`, "c1", "c1"},
		{`"Limpieza Sur"`, "Limpieza Sur", "Limpieza Sur"},
		{`{"id":"c1","nombre":"Limpieza Sur"}`, "c1", "Limpieza Sur"},
		{`{"id":7,"nombre":"Obras Norte"}`, "7", "Obras Norte"},
	}
	for i, tc := range cases {
		var r ContractorRef
		if err := json.Unmarshal([]byte(tc.in), &r); err != nil {
			t.Fatalf("case %d unmarshal: %v", i, err)
		}
		if r.ID != tc.id || r.Nombre != tc.nombre {
			t.Fatalf("case %d got %+v, want id=%s nombre=%s", i, r, tc.id, tc.nombre)
		}
	}
}

func TestMemberUnmarshalActivoDefaultsTrue(t *testing.T) {
	var m Member
	if err := json.Unmarshal([]byte(`{"nombre":"Ana","apellido":"S","documento":"1"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !m.Activo {
		t.Fatal("activo should default to true when absent")
	}
}
