package icon

// Library describes an icon set known to the catalog.
type Library struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`

	// ApproxCount is a hand-maintained estimate of the set size.
	ApproxCount int `json:"approx_count"`
}

// CategoryInfo pairs a category id with its display name.
type CategoryInfo struct {
	ID   Category `json:"id"`
	Name string   `json:"name"`
}

var libraries = []Library{
	{"heroicons", "Heroicons", "https://heroicons.com/", 875},
	{"material-symbols", "Material Symbols", "https://fonts.google.com/icons", 13941},
	{"mdi", "Material Design Icons", "https://materialdesignicons.com/", 7447},
	{"fa", "Font Awesome", "https://fontawesome.com/", 1612},
	{"fa6-solid", "Font Awesome 6 Solid", "https://fontawesome.com/", 1253},
	{"fa6-regular", "Font Awesome 6 Regular", "https://fontawesome.com/", 162},
	{"fa6-brands", "Font Awesome 6 Brands", "https://fontawesome.com/", 457},
	{"ph", "Phosphor Icons", "https://phosphoricons.com/", 894},
	{"tabler", "Tabler Icons", "https://tabler-icons.io/", 5880},
	{"ri", "Remix Icon", "https://remixicon.com/", 3058},
	{"lucide", "Lucide Icons", "https://lucide.dev/", 895},
	{"iconamoon", "Iconamoon", "https://iconamoon.io/", 1781},
	{"bi", "Bootstrap Icons", "https://icons.getbootstrap.com/", 1668},
	{"carbon", "Carbon Icons", "https://carbondesignsystem.com/guidelines/icons/library/", 1442},
	{"fluent", "Fluent Icons", "https://developer.microsoft.com/en-us/fluentui#/styles/web/icons", 3752},
	{"jam", "Jam Icons", "https://jam-icons.com/", 896},
	{"gg", "css.gg", "https://css.gg/", 704},
	{"ion", "Ionicons", "https://ionicons.com/", 1200},
	{"bx", "Box Icons", "https://boxicons.com/", 962},
	{"simple-icons", "Simple Icons", "https://simpleicons.org/", 2475},
	{"ci", "Circum Icons", "https://circumicons.com/", 284},
	{"feather", "Feather Icons", "https://feathericons.com/", 287},
	{"uil", "Unicons", "https://iconscout.com/unicons", 1206},
	{"octicon", "Octicons", "https://primer.style/octicons/", 224},
}

var categories = []CategoryInfo{
	{CategoryInterface, "Interface"},
	{CategoryArrows, "Arrows"},
	{CategoryCommunication, "Communication"},
	{CategoryEcommerce, "E-commerce"},
	{CategorySecurity, "Security"},
	{CategoryFiles, "Files & Documents"},
	{CategoryUsers, "Users & People"},
	{CategoryMedia, "Media"},
	{CategoryTechnology, "Technology"},
	{CategoryBusiness, "Business"},
	{CategoryMaps, "Maps & Location"},
	{CategorySocial, "Social Media"},
	{CategoryHealth, "Health & Medical"},
	{CategoryWeather, "Weather"},
	{CategoryTransport, "Transportation"},
	{CategoryDevelopment, "Development"},
	{CategoryBrands, "Brands & Logos"},
	{CategoryFood, "Food & Beverage"},
	{CategoryNature, "Nature & Environment"},
	{CategoryHousehold, "Household & Furniture"},
}

var (
	libraryByID   = make(map[string]Library, len(libraries))
	categoryNames = make(map[Category]string, len(categories))
)

func init() {
	for _, l := range libraries {
		libraryByID[l.ID] = l
	}
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
}

// Libraries returns a copy of the library catalog in display order.
func Libraries() []Library {
	out := make([]Library, len(libraries))
	copy(out, libraries)
	return out
}

// LookupLibrary returns the catalog entry for prefix.
func LookupLibrary(prefix string) (Library, bool) {
	l, ok := libraryByID[prefix]
	return l, ok
}

// LibraryName returns the catalog display name for prefix, or prefix itself.
func LibraryName(prefix string) string {
	if l, ok := libraryByID[prefix]; ok {
		return l.Name
	}
	return prefix
}

// Categories returns a copy of the category catalog in display order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// CategoryName returns the display name of c, or "" if c is unknown.
func CategoryName(c Category) string {
	return categoryNames[c]
}

// LibraryCounts returns the approximate icon count per catalog library.
func LibraryCounts() map[string]int {
	counts := make(map[string]int, len(libraries))
	for _, l := range libraries {
		counts[l.ID] = l.ApproxCount
	}
	return counts
}

// EstimateTotalIconCount sums the approximate per-library counts.
func EstimateTotalIconCount() int {
	total := 0
	for _, l := range libraries {
		total += l.ApproxCount
	}
	return total
}
