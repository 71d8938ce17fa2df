package normalize

import "github.com/chandu-machineni/iconify/internal/icon"

// StyleRule assigns Style when any PrefixKeywords occurs in the prefix
// or any NameKeywords occurs in the short name.
type StyleRule struct {
	Style          icon.Style
	PrefixKeywords []string
	NameKeywords   []string
}

// CategoryRule assigns Category when any Keywords occurs in the short name.
type CategoryRule struct {
	Category icon.Category
	Keywords []string
}

// DefaultStyleRules is evaluated in order; the first match wins.
var DefaultStyleRules = []StyleRule{
	{Style: icon.StyleSolid, PrefixKeywords: []string{"solid"}, NameKeywords: []string{"fill", "solid"}},
	{Style: icon.StyleThin, PrefixKeywords: []string{"thin"}, NameKeywords: []string{"thin"}},
	{Style: icon.StyleDuotone, PrefixKeywords: []string{"duotone"}, NameKeywords: []string{"duotone"}},
	{Style: icon.StyleBold, PrefixKeywords: []string{"bold"}, NameKeywords: []string{"bold"}},
}

// DefaultCategoryRules is evaluated in order; the first match wins.
var DefaultCategoryRules = []CategoryRule{
	{icon.CategoryArrows, []string{"arrow", "chevron", "caret"}},
	{icon.CategoryUsers, []string{"user", "person", "profile", "avatar"}},
	{icon.CategoryFiles, []string{"file", "document", "page"}},
	{icon.CategoryEcommerce, []string{"cart", "shop", "store", "bag"}},
	{icon.CategoryMedia, []string{"camera", "video", "music", "play"}},
	{icon.CategoryMaps, []string{"map", "location", "pin", "navigation"}},
	{icon.CategoryBusiness, []string{"chart", "graph", "business", "analytics"}},
	{icon.CategorySocial, []string{"facebook", "twitter", "instagram", "linkedin"}},
	{icon.CategoryBrands, []string{"brand", "logo"}},
	{icon.CategoryDevelopment, []string{"code", "git", "development", "terminal"}},
}
