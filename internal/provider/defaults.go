package provider

// DefaultPopularQueries seed the popular sample of the unrestricted provider.
var DefaultPopularQueries = []string{
	"home", "user", "search", "settings", "arrow",
	"cart", "check", "star", "menu", "notification",
}

// DefaultSpecs returns the built-in providers in their fixed iteration order.
// Earlier providers win when the same icon is reported twice.
func DefaultSpecs() []Spec {
	return []Spec{
		{ID: "iconify", Name: "Iconify", PageSize: 200, PopularQueries: DefaultPopularQueries, PopularLimit: 10},
		{ID: "fontawesome", Name: "Font Awesome", Prefixes: []string{"fa", "fa6-solid", "fa6-regular", "fa6-brands"}, PageSize: 100, PopularLimit: 50},
		{ID: "material", Name: "Material Design", Prefixes: []string{"mdi", "material-symbols"}, PageSize: 100, PopularLimit: 100},
		{ID: "bootstrap", Name: "Bootstrap Icons", Prefixes: []string{"bi"}, PageSize: 100, PopularLimit: 50},
		{ID: "heroicons", Name: "Heroicons", Prefixes: []string{"heroicons"}, PageSize: 100, PopularLimit: 50},
		{ID: "remix", Name: "Remix Icon", Prefixes: []string{"ri"}, PageSize: 100, PopularLimit: 50},
	}
}

// FromSpecs builds one IconifyAdapter per spec, preserving order.
func FromSpecs(specs []Spec, client Searcher, opts ...AdapterOption) []Provider {
	out := make([]Provider, 0, len(specs))
	for _, s := range specs {
		out = append(out, NewIconifyAdapter(s, client, opts...))
	}
	return out
}
