package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"asociados/internal/core"
	"asociados/internal/export/memory"
	"asociados/internal/liquidation"
	applog "asociados/internal/log"
	"asociados/internal/services"
)

type fakeStore struct {
	members     map[int64]core.Member
	contractors []core.Contractor
	movements   []core.MovementEvent
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[int64]core.Member),
		nextID:  1,
		contractors: []core.Contractor{
			{ID: "c1", Nombre: "Limpieza Sur"},
			{ID: "c2", Nombre: "Obras Norte"},
		},
	}
}

func (f *fakeStore) CreateMember(_ context.Context, m core.Member) (int64, error) {
	m.ID = f.nextID
	f.nextID++
	f.members[m.ID] = m
	return m.ID, nil
}

func (f *fakeStore) GetMember(_ context.Context, id int64) (core.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return core.Member{}, fmt.Errorf("member %d not found", id)
	}
	return m, nil
}

func (f *fakeStore) DeactivateMember(_ context.Context, id int64, fecha core.Date, responsable string) error {
	m, ok := f.members[id]
	if !ok {
		return fmt.Errorf("member %d not found", id)
	}
	m.Activo = false
	m.FechaBaja = fecha
	m.ResponsableBaja = responsable
	f.members[id] = m
	return nil
}

func (f *fakeStore) UpdateMemberContractor(_ context.Context, id int64, c core.Contractor) error {
	m, ok := f.members[id]
	if !ok {
		return fmt.Errorf("member %d not found", id)
	}
	m.Contratista = core.ContractorRef{ID: c.ID, Nombre: c.Nombre}
	f.members[id] = m
	return nil
}

func (f *fakeStore) ListMembers(_ context.Context) ([]core.Member, error) {
	out := make([]core.Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) ListContractors(_ context.Context) ([]core.Contractor, error) {
	return f.contractors, nil
}

func (f *fakeStore) CreateContractor(_ context.Context, c core.Contractor) error {
	f.contractors = append(f.contractors, c)
	return nil
}

func (f *fakeStore) ListMovements(_ context.Context) ([]core.MovementEvent, error) {
	return f.movements, nil
}

type fakePublisher struct {
	published []core.MovementEvent
}

func (f *fakePublisher) PublishMovement(_ context.Context, e core.MovementEvent) error {
	f.published = append(f.published, e)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeStore, *fakePublisher) {
	t.Helper()
	store := newFakeStore()
	pub := &fakePublisher{}
	members := services.NewMemberService(store, pub)
	liq := services.NewLiquidationService(store, time.Minute)
	logger := applog.New(applog.Config{Level: slog.LevelError})
	return NewServer(":0", members, liq, store, logger, 1000, 1000), store, pub
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestCreateMember(t *testing.T) {
	srv, store, pub := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/asociados", `{
		"nombre": "Juan",
		"apellido": "Pérez",
		"documento": "30111222",
		"legajo": "L-100",
		"fecha_alta": "2024-03-01",
		"contratista": "Limpieza Sur"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding create body: %v", err)
	}
	m, err := store.GetMember(context.Background(), body["id"])
	if err != nil {
		t.Fatalf("member was not stored: %v", err)
	}
	if !m.Activo {
		t.Fatal("new member should be active")
	}
	if len(pub.published) != 1 || pub.published[0].Tipo != core.MovementAlta {
		t.Fatalf("expected one alta event, got %v", pub.published)
	}
}

func TestCreateMemberRejectsInvalid(t *testing.T) {
	srv, _, _ := newTestServer(t)
	cases := []struct {
		name string
		body string
	}{
		{"missing nombre", `{"apellido":"Pérez","documento":"30111222","fecha_alta":"2024-03-01"}`},
		{"bad fecha", `{"nombre":"Juan","apellido":"Pérez","documento":"30111222","fecha_alta":"mañana"}`},
		{"garbage body", `{"nombre":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/asociados", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestDeactivateMember(t *testing.T) {
	srv, store, pub := newTestServer(t)
	id, _ := store.CreateMember(context.Background(), core.Member{
		Nombre: "Ana", Apellido: "Suárez", Documento: "28000111",
		FechaAlta:   core.NewDate(2023, 5, 1),
		Contratista: core.ContractorRef{ID: "c1", Nombre: "Limpieza Sur"},
		Activo:      true,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, fmt.Sprintf("/api/asociados/%d/baja", id),
		`{"fecha":"2024-06-15","responsable":"rrhh"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	m, _ := store.GetMember(context.Background(), id)
	if m.Activo {
		t.Fatal("member should be inactive after baja")
	}
	if m.ResponsableBaja != "rrhh" {
		t.Fatalf("expected responsable rrhh, got %q", m.ResponsableBaja)
	}
	if len(pub.published) != 1 || pub.published[0].Tipo != core.MovementBaja {
		t.Fatalf("expected one baja event, got %v", pub.published)
	}
}

func TestDeactivateMemberUnknownID(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/asociados/99/baja",
		`{"fecha":"2024-06-15","responsable":"rrhh"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferMember(t *testing.T) {
	srv, store, pub := newTestServer(t)
	id, _ := store.CreateMember(context.Background(), core.Member{
		Nombre: "Ana", Apellido: "Suárez", Documento: "28000111",
		FechaAlta:   core.NewDate(2023, 5, 1),
		Contratista: core.ContractorRef{ID: "c1", Nombre: "Limpieza Sur"},
		Activo:      true,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, fmt.Sprintf("/api/asociados/%d/cambio-contratista", id),
		`{"contratista":"obras norte","fecha":"2024-02-10","responsable":"coordinación"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	m, _ := store.GetMember(context.Background(), id)
	if m.Contratista.ID != "c2" {
		t.Fatalf("expected contractor c2 after transfer, got %q", m.Contratista.ID)
	}
	if len(pub.published) != 1 || pub.published[0].Tipo != core.MovementCambioContratista {
		t.Fatalf("expected one cambio event, got %v", pub.published)
	}
}

func TestTransferMemberUnknownContractor(t *testing.T) {
	srv, store, _ := newTestServer(t)
	id, _ := store.CreateMember(context.Background(), core.Member{
		Nombre: "Ana", Apellido: "Suárez", Documento: "28000111",
		FechaAlta: core.NewDate(2023, 5, 1),
		Activo:    true,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, fmt.Sprintf("/api/asociados/%d/cambio-contratista", id),
		`{"contratista":"no existe","fecha":"2024-02-10"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateContractor(t *testing.T) {
	srv, store, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/contratistas",
		`{"id":"c9","nombre":"Vial Centro"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	found := false
	for _, c := range store.contractors {
		if c.ID == "c9" {
			found = true
		}
	}
	if !found {
		t.Fatal("contractor was not stored")
	}

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/contratistas", `{"id":"","nombre":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty contractor, got %d", rec.Code)
	}
}

func TestLiquidacionReport(t *testing.T) {
	srv, store, _ := newTestServer(t)
	store.CreateMember(context.Background(), core.Member{
		Nombre: "Juan", Apellido: "Pérez", Documento: "30111222",
		FechaAlta:   core.NewDate(2024, 3, 1),
		Contratista: core.ContractorRef{ID: "c1", Nombre: "Limpieza Sur"},
		Activo:      true,
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/liquidacion?anio=2024&mes=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report liquidation.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Summary.TotalAltas != 1 {
		t.Fatalf("expected 1 alta, got %d", report.Summary.TotalAltas)
	}
	if report.PeriodLabel != "03/2024" {
		t.Fatalf("expected period 03/2024, got %q", report.PeriodLabel)
	}
}

func TestLiquidacionBadFilters(t *testing.T) {
	srv, _, _ := newTestServer(t)
	cases := []struct {
		name   string
		target string
	}{
		{"missing anio", "/api/liquidacion"},
		{"bad anio", "/api/liquidacion?anio=abc"},
		{"bad mes", "/api/liquidacion?anio=2024&mes=13"},
		{"bad tipo", "/api/liquidacion?anio=2024&tipo=fusion"},
		{"bad desde", "/api/liquidacion?anio=2024&desde=ayer"},
		{"inverted range", "/api/liquidacion?anio=2024&desde=2024-06-01&hasta=2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv.Handler(), http.MethodGet, tc.target, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestLiquidacionCSVDownload(t *testing.T) {
	srv, store, _ := newTestServer(t)
	store.CreateMember(context.Background(), core.Member{
		Nombre: "Juan", Apellido: "Pérez", Documento: "30111222",
		FechaAlta:   core.NewDate(2024, 3, 1),
		Contratista: core.ContractorRef{ID: "c1", Nombre: "Limpieza Sur"},
		Activo:      true,
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/liquidacion/csv?anio=2024&mes=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "liquidacion_2024_03.csv") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), `"Pérez, Juan"`) {
		t.Fatalf("expected member row in CSV, got: %s", rec.Body.String())
	}
}

func TestLiquidacionExport(t *testing.T) {
	srv, store, _ := newTestServer(t)
	sink := memory.New()
	srv.liq.RegisterExporter("sheets", sink)
	store.CreateMember(context.Background(), core.Member{
		Nombre: "Juan", Apellido: "Pérez", Documento: "30111222",
		FechaAlta:   core.NewDate(2024, 3, 1),
		Contratista: core.ContractorRef{ID: "c1", Nombre: "Limpieza Sur"},
		Activo:      true,
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/liquidacion/export?anio=2024&mes=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	exports := sink.Exports()
	if len(exports) != 1 {
		t.Fatalf("expected 1 export, got %d", len(exports))
	}
	if exports[0].Report.Summary.TotalAltas != 1 {
		t.Fatalf("exported report has %d altas, want 1", exports[0].Report.Summary.TotalAltas)
	}

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/liquidacion/export?anio=2024&destination=fax", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for unknown destination, got %d", rec.Code)
	}
}

func TestCreateInvalidatesReportCache(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/liquidacion?anio=2024&mes=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/asociados", `{
		"nombre": "Juan",
		"apellido": "Pérez",
		"documento": "30111222",
		"fecha_alta": "2024-03-01",
		"contratista": "Limpieza Sur"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/liquidacion?anio=2024&mes=3", "")
	var report liquidation.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Summary.TotalAltas != 1 {
		t.Fatalf("expected cache invalidation to surface the new alta, got %d", report.Summary.TotalAltas)
	}
}

func TestRateLimit(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	members := services.NewMemberService(store, pub)
	liq := services.NewLiquidationService(store, time.Minute)
	logger := applog.New(applog.Config{Level: slog.LevelError})
	srv := NewServer(":0", members, liq, store, logger, 1, 1)

	first := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}
	second := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on burst exhaustion, got %d", second.Code)
	}
}
