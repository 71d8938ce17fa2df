// Package normalize turns raw provider hits into canonical icon records.
//
// Normalization is pure: the same hit always yields the same icon, and a hit
// that cannot be parsed yields no icon at all.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/provider"
)

// Normalizer applies ordered style and category rule tables.
// The zero value is not usable; use New or Default.
type Normalizer struct {
	styles     []StyleRule
	categories []CategoryRule
}

// New returns a Normalizer over the given rule tables.
func New(styles []StyleRule, categories []CategoryRule) *Normalizer {
	return &Normalizer{styles: styles, categories: categories}
}

var defaultNormalizer = New(DefaultStyleRules, DefaultCategoryRules)

// Default returns the Normalizer backed by the built-in rule tables.
func Default() *Normalizer {
	return defaultNormalizer
}

// Normalize converts hit, attributed to providerID, into an Icon.
// It reports false for malformed qualified names.
func (n *Normalizer) Normalize(providerID string, hit provider.RawHit) (icon.Icon, bool) {
	qn, err := icon.ParseQualifiedName(hit.QualifiedName)
	if err != nil {
		return icon.Icon{}, false
	}

	prefix := strings.ToLower(qn.Prefix)
	name := strings.ToLower(qn.Name)

	collection := hit.Collection
	if collection == "" {
		collection = icon.LibraryName(qn.Prefix)
	}

	return icon.Icon{
		ID:             hit.QualifiedName,
		Name:           DisplayName(qn.Name),
		Tags:           Tags(qn.Name),
		Style:          n.style(prefix, name),
		Library:        qn.Prefix,
		Category:       n.category(name),
		QualifiedName:  hit.QualifiedName,
		SourceProvider: providerID,
		Collection:     collection,
	}, true
}

// NormalizeAll normalizes hits in order, dropping malformed ones.
func (n *Normalizer) NormalizeAll(providerID string, hits []provider.RawHit) []icon.Icon {
	out := make([]icon.Icon, 0, len(hits))
	for _, h := range hits {
		if ic, ok := n.Normalize(providerID, h); ok {
			out = append(out, ic)
		}
	}
	return out
}

func (n *Normalizer) style(prefix, name string) icon.Style {
	for _, r := range n.styles {
		if containsAny(prefix, r.PrefixKeywords) || containsAny(name, r.NameKeywords) {
			return r.Style
		}
	}
	return icon.StyleOutline
}

func (n *Normalizer) category(name string) icon.Category {
	for _, r := range n.categories {
		if containsAny(name, r.Keywords) {
			return r.Category
		}
	}
	return icon.CategoryInterface
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Tags splits a short name on '-' and '_' and drops empty segments.
func Tags(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
}

// DisplayName title-cases each tag and joins them with spaces:
// "arrow-right_bold" becomes "Arrow Right Bold".
func DisplayName(name string) string {
	parts := Tags(name)
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		if r == utf8.RuneError && size <= 1 {
			// Invalid leading byte stays as is
			continue
		}
		parts[i] = string(unicode.ToUpper(r)) + p[size:]
	}
	return strings.Join(parts, " ")
}
