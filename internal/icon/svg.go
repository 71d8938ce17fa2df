package icon

import (
	"fmt"
	"strings"
)

// DefaultSize is the export size in pixels when none is given.
const DefaultSize = 24

// SVGOptions parameterizes an SVG request. The icon API applies them server-side;
// nothing here rewrites the returned document.
type SVGOptions struct {
	Size        int
	StrokeWidth float64
	Color       string
}

// WithDefaults fills in the default size.
func (o SVGOptions) WithDefaults() SVGOptions {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	return o
}

// ColorParam returns the color as the icon API expects it: no leading '#',
// and empty for currentColor.
func (o SVGOptions) ColorParam() string {
	c := strings.TrimSpace(o.Color)
	if c == "" || strings.EqualFold(c, "currentColor") {
		return ""
	}
	return strings.TrimPrefix(c, "#")
}

var strokeLibraries = []string{
	"lucide", "tabler", "mingcute", "line-md", "carbon", "mdi-light",
	"iconoir", "ph", "solar", "ri", "uil", "bx",
}

var coloredPrefixes = []string{
	"twemoji", "noto", "emojione", "fxemoji", "openmoji", "fluent-emoji",
	"flat-color", "logos", "flag", "cryptocurrency", "circle-flags",
}

// SupportsStroke reports whether icons in the library honour a stroke-width parameter.
// A library matches itself and its dash-suffixed variants ("tabler", "tabler-filled").
// Short ids like "ri" and "ph" would otherwise match unrelated prefixes.
func SupportsStroke(prefix string) bool {
	for _, lib := range strokeLibraries {
		if prefix == lib || strings.HasPrefix(prefix, lib+"-") {
			return true
		}
	}
	return false
}

// IsColored reports whether the library ships multi-colour artwork that ignores a color parameter.
func IsColored(prefix string) bool {
	for _, p := range coloredPrefixes {
		if strings.Contains(prefix, p) {
			return true
		}
	}
	return false
}

// Filename returns the download filename for ic rendered with opts,
// e.g. "arrow-right-24px-1.5px.svg".
func Filename(ic Icon, opts SVGOptions) string {
	opts = opts.WithDefaults()
	base := strings.Join(strings.Fields(strings.ToLower(ic.Name)), "-")
	if base == "" {
		base = ic.ShortName()
	}
	if opts.StrokeWidth > 0 {
		return fmt.Sprintf("%s-%dpx-%gpx.svg", base, opts.Size, opts.StrokeWidth)
	}
	return fmt.Sprintf("%s-%dpx.svg", base, opts.Size)
}
