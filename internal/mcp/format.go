package mcp

import (
	"fmt"
	"strings"

	"github.com/chandu-machineni/iconify/internal/icon"
)

// FormatIcons renders an icon listing as a markdown table under title.
func FormatIcons(title string, out IconsOutput) string {
	if len(out.Icons) == 0 {
		if out.Query != "" {
			return fmt.Sprintf("No icons found for \"%s\"", out.Query)
		}
		return "No icons found"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Showing %d icon", out.Count))
	if out.Count != 1 {
		sb.WriteString("s")
	}
	if out.Page > 0 {
		sb.WriteString(fmt.Sprintf(" (page %d)", out.Page))
	}
	if out.HasMore {
		sb.WriteString(". More available, call more_icons")
	}
	sb.WriteString(".\n\n")

	sb.WriteString("| Icon | Name | Style | Category | Library |\n")
	sb.WriteString("|------|------|-------|----------|---------|\n")
	for _, ic := range out.Icons {
		sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %s |\n",
			ic.QualifiedName, escapeCell(ic.Name), ic.Style, ic.Category, escapeCell(ic.Collection)))
	}
	return sb.String()
}

// FormatLibraries renders the library catalog as markdown.
func FormatLibraries(out LibrariesOutput) string {
	var sb strings.Builder
	sb.WriteString("## Icon Libraries\n\n")
	sb.WriteString(fmt.Sprintf("%d libraries, about %d icons.\n\n", len(out.Libraries), out.TotalIcons))
	sb.WriteString("| Prefix | Name | Icons |\n")
	sb.WriteString("|--------|------|-------|\n")
	for _, l := range out.Libraries {
		sb.WriteString(fmt.Sprintf("| `%s` | %s | %d |\n", l.ID, escapeCell(l.Name), l.ApproxCount))
	}
	return sb.String()
}

// FormatCategories renders the category catalog as markdown.
func FormatCategories(out CategoriesOutput) string {
	var sb strings.Builder
	sb.WriteString("## Icon Categories\n\n")
	for _, c := range out.Categories {
		sb.WriteString(fmt.Sprintf("- `%s` %s\n", c.ID, c.Name))
	}
	return sb.String()
}

// FormatSVG renders an SVG document as a fenced block.
func FormatSVG(out SVGOutput) string {
	return fmt.Sprintf("## %s\n\nFilename: `%s`\n\n```svg\n%s\n```\n",
		out.Name, out.Filename, strings.TrimSpace(out.SVG))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func iconsOutput(icons []icon.Icon) IconsOutput {
	return IconsOutput{Count: len(icons), Icons: icons}
}
