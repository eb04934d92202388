package liquidation

import (
	"testing"

	"asociados/internal/core"
)

func testDirectory() *Directory {
	return NewDirectory([]core.Contractor{
		{ID: "c1", Nombre: "Limpieza Sur"},
		{ID: "c2", Nombre: "Obras Norte"},
		{ID: "c3", Nombre: "Vial Centro"},
	})
}

func TestResolveForms(t *testing.T) {
	dir := testDirectory()
	cases := []struct {
		name string
		ref  core.ContractorRef
		want string // expected id, "" for unresolved
	}{
		{"by id", core.ContractorRef{ID: "c1", Nombre: "c1"}, "c1"},
		{"by exact name", core.ContractorRef{ID: "Obras Norte", Nombre: "Obras Norte"}, "c2"},
		{"case insensitive", core.ContractorRef{Nombre: "obras norte"}, "c2"},
		{"whitespace collapsed", core.ContractorRef{Nombre: "  Obras   Norte "}, "c2"},
		{"embedded object id wins", core.ContractorRef{ID: "c3", Nombre: "Obras Norte"}, "c3"},
		{"unknown id falls back to name", core.ContractorRef{ID: "c99", Nombre: "Vial Centro"}, "c3"},
		{"unknown", core.ContractorRef{ID: "nadie", Nombre: "nadie"}, ""},
		{"empty", core.ContractorRef{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := dir.Resolve(tc.ref)
			if tc.want == "" {
				if ok {
					t.Fatalf("expected unresolved, got %+v", got)
				}
				return
			}
			if !ok || got.ID != tc.want {
				t.Fatalf("got %+v ok=%v, want id %s", got, ok, tc.want)
			}
		})
	}
}

// Resolving the same underlying contractor through its id form, name form and
// embedded-object form must always yield the same identity.
func TestResolveIdempotence(t *testing.T) {
	dir := testDirectory()
	forms := []core.ContractorRef{
		{ID: "c1", Nombre: "c1"},
		{ID: "Limpieza Sur", Nombre: "Limpieza Sur"},
		{Nombre: "LIMPIEZA  sur"},
		{ID: "c1", Nombre: "Limpieza Sur"},
	}
	for i, ref := range forms {
		c, ok := dir.Resolve(ref)
		if !ok || c.ID != "c1" || c.Nombre != "Limpieza Sur" {
			t.Fatalf("form %d resolved to %+v ok=%v", i, c, ok)
		}
		again, _ := dir.Resolve(ref)
		if again != c {
			t.Fatalf("form %d not stable: %+v vs %+v", i, c, again)
		}
	}
}

func TestResolveNilDirectory(t *testing.T) {
	var dir *Directory
	if _, ok := dir.Resolve(core.ContractorRef{ID: "c1"}); ok {
		t.Fatal("nil directory should resolve nothing")
	}
}
