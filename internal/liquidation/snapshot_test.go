package liquidation

import (
	"testing"
	"time"

	"asociados/internal/core"
)

func TestActiveAsOf(t *testing.T) {
	dir := testDirectory()
	alta := member(1, "Ana", core.NewDate(2024, 1, 10), "c1")

	dado := member(2, "Beto", core.NewDate(2023, 5, 1), "c1")
	dado.Activo = false
	dado.FechaBaja = core.NewDate(2024, 1, 20)

	ms := Normalize([]core.Member{alta, dado}, nil, dir)

	cases := []struct {
		name    string
		instant time.Time
		want    int
	}{
		{"before everything", core.NewDate(2023, 1, 1).Time, 0},
		{"after first alta only", core.NewDate(2023, 6, 1).Time, 1},
		{"both active", core.NewDate(2024, 1, 15).Time, 2},
		{"after baja", core.NewDate(2024, 2, 1).Time, 1},
		{"boundary is strict-before", core.NewDate(2024, 1, 20).Time, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ActiveAsOf(tc.instant, ms); got != tc.want {
				t.Fatalf("ActiveAsOf(%v) = %d, want %d", tc.instant, got, tc.want)
			}
		})
	}
}

func TestActiveAsOfTransfersDoNotChangeState(t *testing.T) {
	dir := testDirectory()
	m := member(1, "Ana", core.NewDate(2023, 12, 1), "c1")
	events := []core.MovementEvent{{
		Tipo:                core.MovementCambioContratista,
		MemberID:            1,
		Fecha:               core.NewDate(2024, 1, 15),
		ContratistaAnterior: core.ContractorRef{ID: "c1"},
		ContratistaNuevo:    core.ContractorRef{ID: "c2"},
	}}
	ms := Normalize([]core.Member{m}, events, dir)
	if got := ActiveAsOf(core.NewDate(2024, 2, 1).Time, ms); got != 1 {
		t.Fatalf("transferred member must stay active, got %d", got)
	}
}

func TestActiveAsOfUntimedCountsAlways(t *testing.T) {
	ms := []Movement{{Kind: KindAlta, MemberID: 1, Timed: false}}
	if got := ActiveAsOf(core.NewDate(2000, 1, 1).Time, ms); got != 1 {
		t.Fatalf("untimed alta must count in any snapshot, got %d", got)
	}
}

func TestActiveAsOfNoMovements(t *testing.T) {
	if got := ActiveAsOf(time.Now(), nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
