package equipment

import (
	"testing"

	"github.com/storopack-br/suporte/internal/config"
)

func testRegistry() *Registry {
	return NewRegistry(map[string]config.Equipment{
		"airplus":           {Nome: "AIRplus Mini", AssistantID: "asst_air", VectorStoreID: "vs_air"},
		"airmove_2":         {Nome: "AIRmove 2", AssistantID: "asst_move", VectorStoreID: "vs_move"},
		"foamplus":          {Nome: "FOAMplus Bag Packer", AssistantID: "asst_foam", VectorStoreID: "vs_foam"},
		"paperplus_classic": {Nome: "PAPERplus Classic", AssistantID: "asst_pc", VectorStoreID: "vs_pc"},
		"paperplus_track":   {Nome: "PAPERplus Track", AssistantID: "asst_pt", VectorStoreID: "vs_pt"},
	})
}

func TestResolveExactMatch(t *testing.T) {
	r := testRegistry()
	b, ok := r.Resolve("airplus")
	if !ok {
		t.Fatalf("airplus should resolve")
	}
	if b.Nome != "AIRplus Mini" {
		t.Fatalf("nome = %q, want AIRplus Mini", b.Nome)
	}
}

func TestResolveFamilies(t *testing.T) {
	r := testRegistry()
	cases := []struct {
		in   string
		want string
	}{
		{"airplus_void", "airplus"},
		{"AIRPLUS_CUSHION", "airplus"},
		{"airmove", "airmove_2"},
		{"airmove1_standard", "airmove_2"},
		{"foam_bag", "foamplus"},
		{"foamplus_bag_packer", "foamplus"},
		{"paper_classic", "paperplus_classic"},
		{"paperplus", "paperplus_classic"},
		{"paper_track", "paperplus_track"},
		{"paperplus_track_v2", "paperplus_track"},
		{"  airplus  ", "airplus"},
	}
	for _, c := range cases {
		b, ok := r.Resolve(c.in)
		if !ok {
			t.Fatalf("Resolve(%q) should succeed", c.in)
		}
		if b.Key != c.want {
			t.Fatalf("Resolve(%q) = %q, want %q", c.in, b.Key, c.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	r := testRegistry()
	for _, in := range []string{"", "   ", "coolpack", "wrap_master"} {
		if _, ok := r.Resolve(in); ok {
			t.Fatalf("Resolve(%q) should fail", in)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := testRegistry()
	first, _ := r.Resolve("paper_track_xl")
	for i := 0; i < 10; i++ {
		b, _ := r.Resolve("paper_track_xl")
		if b.Key != first.Key {
			t.Fatalf("resolution changed between calls: %q vs %q", b.Key, first.Key)
		}
	}
}

func TestUsable(t *testing.T) {
	full := Binding{AssistantID: "a", VectorStoreID: "v"}
	if !full.Usable() {
		t.Fatalf("binding with both ids should be usable")
	}
	for _, b := range []Binding{
		{AssistantID: "a"},
		{VectorStoreID: "v"},
		{},
	} {
		if b.Usable() {
			t.Fatalf("binding %+v should not be usable", b)
		}
	}
}
