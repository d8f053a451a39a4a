package taxonomy

import (
	"fmt"

	"github.com/crimson-sun/vitigate/internal/model"
)

// DefaultType is the implicit type used when a request names only an action.
const DefaultType = "todos"

// Action is a top-level taxonomy node and the product types it offers.
type Action struct {
	Name    string
	Default string // type served for a bare action; DefaultType when empty
	Types   []Type
}

// Type is a leaf of the taxonomy tree.
type Type struct {
	Name  string
	Entry model.Entry
}

// Registry maps (action, type) pairs to upstream entries. It is built once
// and never mutated, so concurrent lookups need no locking.
type Registry struct {
	actions  []string
	types    map[string][]string
	entries  map[string]map[string]model.Entry
	defaults map[string]string
}

// New builds a Registry from a set of actions, preserving declaration order.
func New(actions []Action) (*Registry, error) {
	r := &Registry{
		types:    make(map[string][]string, len(actions)),
		entries:  make(map[string]map[string]model.Entry, len(actions)),
		defaults: make(map[string]string, len(actions)),
	}
	for _, a := range actions {
		if a.Name == "" {
			return nil, fmt.Errorf("taxonomy: action with empty name")
		}
		if _, dup := r.entries[a.Name]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate action %q", a.Name)
		}
		if len(a.Types) == 0 {
			return nil, fmt.Errorf("taxonomy: action %q has no types", a.Name)
		}

		leaves := make(map[string]model.Entry, len(a.Types))
		names := make([]string, 0, len(a.Types))
		for _, t := range a.Types {
			if _, dup := leaves[t.Name]; dup {
				return nil, fmt.Errorf("taxonomy: duplicate type %q under %q", t.Name, a.Name)
			}
			if t.Entry.ResourceID == "" {
				return nil, fmt.Errorf("taxonomy: %s/%s has no resource", a.Name, t.Name)
			}
			leaves[t.Name] = t.Entry
			names = append(names, t.Name)
		}

		def := a.Default
		if def == "" {
			def = DefaultType
		}
		if _, ok := leaves[def]; !ok {
			return nil, fmt.Errorf("taxonomy: default type %q not declared under %q", def, a.Name)
		}

		r.actions = append(r.actions, a.Name)
		r.types[a.Name] = names
		r.entries[a.Name] = leaves
		r.defaults[a.Name] = def
	}
	return r, nil
}

// Lookup resolves an (action, type) pair. Keys match exactly; a miss at
// either level is a NotFound GatewayError.
func (r *Registry) Lookup(action, typ string) (model.Entry, error) {
	leaves, ok := r.entries[action]
	if !ok {
		return model.Entry{}, &model.GatewayError{
			Kind:    model.NotFound,
			Message: fmt.Sprintf("unknown action %q", action),
		}
	}
	entry, ok := leaves[typ]
	if !ok {
		return model.Entry{}, &model.GatewayError{
			Kind:    model.NotFound,
			Message: fmt.Sprintf("unknown type %q for action %q", typ, action),
		}
	}
	return entry, nil
}

// Default returns the implicit type of an action.
func (r *Registry) Default(action string) (string, bool) {
	def, ok := r.defaults[action]
	return def, ok
}

// Actions returns the action names in declaration order.
func (r *Registry) Actions() []string {
	out := make([]string, len(r.actions))
	copy(out, r.actions)
	return out
}

// Types returns the type names of an action in declaration order, or nil
// when the action is unknown.
func (r *Registry) Types(action string) []string {
	names, ok := r.types[action]
	if !ok {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}
