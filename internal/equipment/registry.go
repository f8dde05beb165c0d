package equipment

import (
	"strings"

	"github.com/storopack-br/suporte/internal/config"
)

// Binding associates an equipment key with its knowledge-base assistant and
// document store. A binding may exist without being usable for the AI path
// (missing assistant or vector store id) — it still carries the display name
// for offline responses.
type Binding struct {
	Key           string
	Nome          string
	AssistantID   string
	VectorStoreID string
}

// Usable reports whether the binding can serve the AI-backed path.
func (b Binding) Usable() bool {
	return b.AssistantID != "" && b.VectorStoreID != ""
}

// Registry resolves module keys sent by the frontend to bindings. It is built
// once from the config snapshot and read-only afterwards.
type Registry struct {
	bindings map[string]Binding
}

func NewRegistry(equipamentos map[string]config.Equipment) *Registry {
	bindings := make(map[string]Binding, len(equipamentos))
	for key, eq := range equipamentos {
		bindings[key] = Binding{
			Key:           key,
			Nome:          eq.Nome,
			AssistantID:   eq.AssistantID,
			VectorStoreID: eq.VectorStoreID,
		}
	}
	return &Registry{bindings: bindings}
}

// Resolve maps a module key to its binding. Exact match wins; otherwise the
// frontend sends compound keys like "airplus_void" or "paper_track" and the
// family prefix decides:
//
//	airplus_*                 → airplus
//	airmove*, airmove1_*, ... → airmove_2 (single assistant for the family)
//	foam*                     → foamplus
//	paper_* with "track"      → paperplus_track, else paperplus_classic
func (r *Registry) Resolve(moduleKey string) (Binding, bool) {
	key := strings.ToLower(strings.TrimSpace(moduleKey))
	if key == "" {
		return Binding{}, false
	}

	if b, ok := r.bindings[key]; ok {
		return b, true
	}

	switch {
	case strings.HasPrefix(key, "airplus"):
		return r.lookup("airplus")
	case strings.HasPrefix(key, "airmove"):
		return r.lookup("airmove_2")
	case strings.HasPrefix(key, "foam"):
		return r.lookup("foamplus")
	case strings.HasPrefix(key, "paper"):
		if strings.Contains(key, "track") {
			return r.lookup("paperplus_track")
		}
		return r.lookup("paperplus_classic")
	}

	return Binding{}, false
}

func (r *Registry) lookup(key string) (Binding, bool) {
	b, ok := r.bindings[key]
	return b, ok
}
