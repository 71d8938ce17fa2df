// Package icon defines the canonical icon record shared by every provider,
// together with the static library and category catalogs.
package icon

import (
	"fmt"
	"slices"
	"strings"
)

// Style is the visual weight of an icon, inferred from its prefix and name.
type Style string

const (
	StyleOutline Style = "outline"
	StyleSolid   Style = "solid"
	StyleThin    Style = "thin"
	StyleDuotone Style = "duotone"
	StyleBold    Style = "bold"
)

// Styles lists every Style in declaration order.
func Styles() []Style {
	return []Style{StyleOutline, StyleSolid, StyleThin, StyleDuotone, StyleBold}
}

// Valid reports whether s is one of the known styles.
func (s Style) Valid() bool {
	switch s {
	case StyleOutline, StyleSolid, StyleThin, StyleDuotone, StyleBold:
		return true
	}
	return false
}

// Category is one of the closed set of icon categories.
type Category string

const (
	CategoryInterface     Category = "interface"
	CategoryArrows        Category = "arrows"
	CategoryCommunication Category = "communication"
	CategoryEcommerce     Category = "ecommerce"
	CategorySecurity      Category = "security"
	CategoryFiles         Category = "files"
	CategoryUsers         Category = "users"
	CategoryMedia         Category = "media"
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategoryMaps          Category = "maps"
	CategorySocial        Category = "social"
	CategoryHealth        Category = "health"
	CategoryWeather       Category = "weather"
	CategoryTransport     Category = "transport"
	CategoryDevelopment   Category = "development"
	CategoryBrands        Category = "brands"
	CategoryFood          Category = "food"
	CategoryNature        Category = "nature"
	CategoryHousehold     Category = "household"
)

// Valid reports whether c is in the category catalog.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// Icon is the provider-independent record produced by normalization.
// Values are never mutated after construction.
type Icon struct {
	// ID equals QualifiedName and is unique within any aggregated result list.
	ID string `json:"id"`

	// Name is the human-readable title, e.g. "Arrow Right Bold".
	Name string `json:"name"`

	// Tags are the non-empty '-' / '_' segments of the short name.
	Tags []string `json:"tags"`

	Style    Style    `json:"style"`
	Library  string   `json:"library"`
	Category Category `json:"category"`

	// QualifiedName is "prefix:name", the handle the icon API understands.
	QualifiedName string `json:"qualified_name"`

	// SourceProvider is the id of the provider adapter that produced the icon.
	SourceProvider string `json:"source_provider"`

	// Collection is the display name of the library the icon belongs to.
	Collection string `json:"collection,omitempty"`
}

// Clone returns a copy of i that shares no backing arrays with it.
func (i Icon) Clone() Icon {
	i.Tags = slices.Clone(i.Tags)
	return i
}

// CloneAll deep-copies icons. A nil slice stays nil.
func CloneAll(icons []Icon) []Icon {
	if icons == nil {
		return nil
	}
	out := make([]Icon, len(icons))
	for n, ic := range icons {
		out[n] = ic.Clone()
	}
	return out
}

// ShortName returns the part of the qualified name after the prefix.
func (i Icon) ShortName() string {
	_, name, _ := strings.Cut(i.QualifiedName, ":")
	return name
}

// QualifiedName is a parsed "prefix:name" handle.
type QualifiedName struct {
	Prefix string
	Name   string
}

// String renders the handle back to "prefix:name".
func (q QualifiedName) String() string {
	return q.Prefix + ":" + q.Name
}

// ParseQualifiedName splits s at its first colon. Both halves must be non-empty
// and the name may not contain a further colon.
func ParseQualifiedName(s string) (QualifiedName, error) {
	prefix, name, ok := strings.Cut(s, ":")
	if !ok || prefix == "" || name == "" || strings.Contains(name, ":") {
		return QualifiedName{}, fmt.Errorf("malformed qualified name %q: want prefix:name", s)
	}
	return QualifiedName{Prefix: prefix, Name: name}, nil
}
