package vitigate

// Action is one top-level dataset family with the types it serves.
type Action struct {
	Name    string   // e.g. "processamento"
	Default string   // type used when Fetch is called with an empty type
	Types   []string // accepted type names, aliases included
}

// Taxonomy returns every action in registration order. The result is a copy.
func (g *Gateway) Taxonomy() []Action {
	reg := g.pipeline.Registry()
	names := reg.Actions()
	actions := make([]Action, len(names))
	for i, name := range names {
		def, _ := reg.Default(name)
		actions[i] = Action{Name: name, Default: def, Types: reg.Types(name)}
	}
	return actions
}
