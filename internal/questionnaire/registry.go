package questionnaire

import (
	"fmt"
	"strings"
)

// Registry is a read-only catalog of questionnaires keyed by normalized id.
type Registry struct {
	defs  map[string]Definition
	order []string
}

var defaultRegistry = NewRegistry(catalog()...)

// Default returns the built-in catalog.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from the given definitions. Later duplicates win.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		key := NormalizeID(def.ID)
		if _, exists := r.defs[key]; !exists {
			r.order = append(r.order, key)
		}
		r.defs[key] = def.clone()
	}
	return r
}

// NormalizeID makes "dass-21", "DASS 21" and "DASS21" equivalent.
func NormalizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(id)))
}

// Get returns a copy of the definition for id.
func (r *Registry) Get(id string) (Definition, error) {
	def, ok := r.defs[NormalizeID(id)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownQuestionnaire, id)
	}
	return def.clone(), nil
}

// List returns summaries in catalog order.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.defs[key].Summary())
	}
	return out
}

// Score looks up id and scores responses against it.
func (r *Registry) Score(id string, responses []int) (ScoreResult, error) {
	def, ok := r.defs[NormalizeID(id)]
	if !ok {
		return ScoreResult{}, fmt.Errorf("%w: %q", ErrUnknownQuestionnaire, id)
	}
	return Score(def, responses)
}
