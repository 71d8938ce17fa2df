package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/icon"
)

// MaxQueryLength bounds the query text accepted from consumers, in runes.
const MaxQueryLength = 200

// ParseFilters builds Filters from consumer input. Each value may itself be a
// comma-separated list. Unknown styles and categories are rejected; library
// prefixes are accepted as given since the upstream has many more than the catalog.
func ParseFilters(libraries, styles, categories []string) (Filters, error) {
	var f Filters
	for _, l := range splitList(libraries) {
		if strings.Contains(l, ":") {
			return Filters{}, ierrors.New(ierrors.ErrCodeUnknownLibrary, fmt.Sprintf("invalid library prefix %q", l), nil)
		}
		f.Libraries = append(f.Libraries, l)
	}
	for _, s := range splitList(styles) {
		st := icon.Style(strings.ToLower(s))
		if !st.Valid() {
			return Filters{}, ierrors.ValidationError(fmt.Sprintf("unknown style %q", s), nil).
				WithSuggestion("use one of outline, solid, thin, duotone, bold")
		}
		f.Styles = append(f.Styles, st)
	}
	for _, c := range splitList(categories) {
		cat := icon.Category(strings.ToLower(c))
		if !cat.Valid() {
			return Filters{}, ierrors.ValidationError(fmt.Sprintf("unknown category %q", c), nil).
				WithSuggestion("run `iconify categories` for the list")
		}
		f.Categories = append(f.Categories, cat)
	}
	return f, nil
}

// ValidateQuery checks consumer query text.
func ValidateQuery(text string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n > MaxQueryLength {
		return ierrors.New(ierrors.ErrCodeQueryTooLong,
			fmt.Sprintf("query is %d characters, the limit is %d", n, MaxQueryLength), nil)
	}
	return nil
}

// ValidatePage checks a consumer page number; 0 means the first page.
func ValidatePage(page int) error {
	if page < 0 || page > MaxPage {
		return ierrors.New(ierrors.ErrCodeInvalidPage,
			fmt.Sprintf("page must be between 1 and %d, got %d", MaxPage, page), nil)
	}
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
