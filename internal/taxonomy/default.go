package taxonomy

import "github.com/crimson-sun/vitigate/internal/model"

// DefaultActions returns the built-in sitemap of the vitibrasil download area.
// Several type names are aliases for the same upstream file.
func DefaultActions() []Action {
	tab := func(resource string) model.Entry { return model.Entry{ResourceID: resource, Delimiter: '\t'} }
	semi := func(resource string) model.Entry { return model.Entry{ResourceID: resource, Delimiter: ';'} }

	return []Action{
		{
			Name: "processamento",
			Types: []Type{
				{Name: "viniferas", Entry: tab("ProcessaViniferas")},
				{Name: "americanasehibridas", Entry: tab("ProcessaAmericanas")},
				{Name: "americanas", Entry: tab("ProcessaAmericanas")},
				{Name: "hibridas", Entry: tab("ProcessaAmericanas")},
				{Name: "uvasdemesa", Entry: tab("ProcessaMesa")},
				{Name: "mesa", Entry: tab("ProcessaMesa")},
				{Name: "semclassificacao", Entry: tab("ProcessaSemclass")},
				{Name: "todos", Entry: tab("ProcessaSemclass")},
			},
		},
		{
			Name: "comercializacao",
			Types: []Type{
				{Name: "todos", Entry: semi("Comercio")},
			},
		},
		{
			Name: "importacao",
			Types: []Type{
				{Name: "vinhosdemesa", Entry: semi("ImpVinhos")},
				{Name: "vinhos", Entry: semi("ImpVinhos")},
				{Name: "espumantes", Entry: semi("ImpEspumantes")},
				{Name: "uvasfrescas", Entry: semi("ImpFrescas")},
				{Name: "uvas", Entry: semi("ImpFrescas")},
				{Name: "frescas", Entry: semi("ImpFrescas")},
				{Name: "uvaspassas", Entry: semi("ImpPassas")},
				{Name: "passas", Entry: semi("ImpPassas")},
				{Name: "sucodeuva", Entry: semi("ImpSuco")},
				{Name: "suco", Entry: semi("ImpSuco")},
				{Name: "todos", Entry: semi("ImpVinhos")},
			},
		},
		{
			Name: "exportacao",
			Types: []Type{
				{Name: "vinhosdemesa", Entry: semi("ExpVinho")},
				{Name: "vinhos", Entry: semi("ExpVinho")},
				{Name: "espumantes", Entry: semi("ExpEspumantes")},
				{Name: "uvasfrescas", Entry: semi("ExpUva")},
				{Name: "uvas", Entry: semi("ExpUva")},
				{Name: "frescas", Entry: semi("ExpUva")},
				{Name: "sucodeuva", Entry: semi("ExpSuco")},
				{Name: "suco", Entry: semi("ExpSuco")},
				{Name: "todos", Entry: semi("ExpVinho")},
			},
		},
	}
}

// Default builds the Registry for DefaultActions.
func Default() *Registry {
	r, err := New(DefaultActions())
	if err != nil {
		panic(err)
	}
	return r
}
