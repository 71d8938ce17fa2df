// Package search is the aggregation engine: it fans a query out to every
// provider, normalizes and merges the hits, and caches the merged lists.
package search

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/chandu-machineni/iconify/internal/icon"
)

const (
	// DefaultMaxResults caps every merged search result list.
	DefaultMaxResults = 1000

	// DefaultDisplayPageSize is how many icons a Session hands out per page.
	DefaultDisplayPageSize = 100

	// DefaultLibraryLimit is the listing size for Library when none is given.
	DefaultLibraryLimit = 200

	// MaxPage is the highest provider page accepted from consumers.
	MaxPage = 10000

	popularKey = "popular"
)

// Filters narrows merged results. An empty list places no restriction on that field.
type Filters struct {
	Libraries  []string        `json:"libraries,omitempty"`
	Styles     []icon.Style    `json:"styles,omitempty"`
	Categories []icon.Category `json:"categories,omitempty"`
}

// IsZero reports whether f restricts nothing.
func (f Filters) IsZero() bool {
	return len(f.Libraries) == 0 && len(f.Styles) == 0 && len(f.Categories) == 0
}

// Match reports whether ic passes every non-empty filter list.
func (f Filters) Match(ic icon.Icon) bool {
	if len(f.Libraries) > 0 && !slices.Contains(f.Libraries, ic.Library) {
		return false
	}
	if len(f.Styles) > 0 && !slices.Contains(f.Styles, ic.Style) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, ic.Category) {
		return false
	}
	return true
}

// searchKey is the cache key shape. JSON encoding keeps text, filters and page
// in separate fields, so no query can collide with another or with the
// popular and library keys.
type searchKey struct {
	Q          string   `json:"q"`
	Libraries  []string `json:"l"`
	Styles     []string `json:"s"`
	Categories []string `json:"c"`
	Page       int      `json:"p"`
}

// SearchKey returns the cache key for a search. Filter lists are sorted and
// deduplicated so their order does not matter.
func SearchKey(text string, f Filters, page int) string {
	k := searchKey{
		Q:          text,
		Libraries:  canonical(f.Libraries),
		Styles:     canonical(f.Styles),
		Categories: canonical(f.Categories),
		Page:       page,
	}
	b, _ := json.Marshal(k)
	return string(b)
}

// LibraryKey returns the cache key for a library listing.
func LibraryKey(prefix string, limit int) string {
	return "library:" + prefix + ":" + strconv.Itoa(limit)
}

func canonical[S ~string](in []S) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// dedupe keeps the first icon for every id, preserving order.
func dedupe(icons []icon.Icon, seen map[string]struct{}) []icon.Icon {
	out := make([]icon.Icon, 0, len(icons))
	for _, ic := range icons {
		if _, dup := seen[ic.ID]; dup {
			continue
		}
		seen[ic.ID] = struct{}{}
		out = append(out, ic)
	}
	return out
}
