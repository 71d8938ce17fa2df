package mcp

import (
	"github.com/chandu-machineni/iconify/internal/cache"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

// SearchIconsInput defines the input schema for the search_icons tool.
type SearchIconsInput struct {
	Query      string   `json:"query" jsonschema:"what to search for, e.g. arrow right; empty returns popular icons"`
	Libraries  []string `json:"libraries,omitempty" jsonschema:"restrict to these library prefixes, e.g. mdi, lucide"`
	Styles     []string `json:"styles,omitempty" jsonschema:"restrict to styles: outline, solid, thin, duotone, bold"`
	Categories []string `json:"categories,omitempty" jsonschema:"restrict to categories, see list_categories"`
}

// MoreIconsInput defines the input schema for the more_icons tool (no parameters).
type MoreIconsInput struct{}

// PopularIconsInput defines the input schema for the popular_icons tool (no parameters).
type PopularIconsInput struct{}

// LibraryIconsInput defines the input schema for the library_icons tool.
type LibraryIconsInput struct {
	Prefix string `json:"prefix" jsonschema:"library prefix, e.g. heroicons"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of icons, default 200"`
}

// ListInput defines the input schema for the catalog tools (no parameters).
type ListInput struct{}

// GetSVGInput defines the input schema for the get_svg tool.
type GetSVGInput struct {
	Name        string  `json:"name" jsonschema:"qualified icon name, e.g. mdi:home"`
	Size        int     `json:"size,omitempty" jsonschema:"size in pixels, default 24"`
	StrokeWidth float64 `json:"stroke_width,omitempty" jsonschema:"stroke width for line icon sets such as lucide or tabler"`
	Color       string  `json:"color,omitempty" jsonschema:"hex color, default currentColor"`
}

// IconsOutput defines the output schema for the icon listing tools.
type IconsOutput struct {
	Query   string      `json:"query,omitempty"`
	Page    int         `json:"page,omitempty"`
	Count   int         `json:"count"`
	HasMore bool        `json:"has_more"`
	Icons   []icon.Icon `json:"icons"`
}

// LibrariesOutput defines the output schema for list_libraries.
type LibrariesOutput struct {
	Libraries  []icon.Library `json:"libraries"`
	TotalIcons int            `json:"total_icons"`
}

// CategoriesOutput defines the output schema for list_categories.
type CategoriesOutput struct {
	Categories []icon.CategoryInfo `json:"categories"`
}

// SVGOutput defines the output schema for get_svg.
type SVGOutput struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	SVG      string `json:"svg"`
}

// StatsOutput is the content of the stats resource.
type StatsOutput struct {
	Cache   cache.Stats              `json:"cache"`
	Queries *telemetry.QuerySnapshot `json:"queries,omitempty"`
}
