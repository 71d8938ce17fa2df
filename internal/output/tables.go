package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chandu-machineni/iconify/internal/cache"
	"github.com/chandu-machineni/iconify/internal/icon"
	"github.com/chandu-machineni/iconify/internal/telemetry"
)

func (w *Writer) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(w.styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return w.styles.Header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// Icons prints icons as a table followed by a one-line summary.
func (w *Writer) Icons(icons []icon.Icon, summary string) {
	if len(icons) == 0 {
		w.Warning("No icons found")
		return
	}

	rows := make([][]string, len(icons))
	for i, ic := range icons {
		rows[i] = []string{ic.ID, ic.Name, string(ic.Style), string(ic.Category), ic.Collection}
	}
	_, _ = fmt.Fprintln(w.out, w.table([]string{"ID", "NAME", "STYLE", "CATEGORY", "COLLECTION"}, rows))
	if summary != "" {
		w.Dim(summary)
	}
}

// Libraries prints the library catalog with approximate icon counts.
func (w *Writer) Libraries(libs []icon.Library) {
	rows := make([][]string, len(libs))
	total := 0
	for i, l := range libs {
		rows[i] = []string{l.ID, l.Name, strconv.Itoa(l.ApproxCount)}
		total += l.ApproxCount
	}
	_, _ = fmt.Fprintln(w.out, w.table([]string{"PREFIX", "NAME", "ICONS"}, rows))
	w.Dim(fmt.Sprintf("%d libraries, about %d icons", len(libs), total))
}

// Categories prints the category catalog.
func (w *Writer) Categories(cats []icon.CategoryInfo) {
	rows := make([][]string, len(cats))
	for i, c := range cats {
		rows[i] = []string{string(c.ID), c.Name}
	}
	_, _ = fmt.Fprintln(w.out, w.table([]string{"ID", "NAME"}, rows))
}

// Stats prints cache and query statistics.
func (w *Writer) Stats(cs cache.Stats, qs *telemetry.QuerySnapshot) {
	w.Header("Cache")
	w.kv("entries", strconv.Itoa(cs.Entries))
	w.kv("hits", strconv.FormatUint(cs.Hits, 10))
	w.kv("misses", strconv.FormatUint(cs.Misses, 10))
	w.kv("evictions", strconv.FormatUint(cs.Evictions, 10))
	if qs == nil {
		return
	}

	w.Newline()
	w.Header("Queries")
	w.kv("total", strconv.FormatInt(qs.TotalQueries, 10))
	w.kv("cache hit rate", fmt.Sprintf("%.0f%%", qs.CacheHitRate()*100))
	if len(qs.TopTerms) > 0 {
		terms := make([]string, len(qs.TopTerms))
		for i, t := range qs.TopTerms {
			terms[i] = fmt.Sprintf("%s (%d)", t.Term, t.Count)
		}
		w.kv("top terms", strings.Join(terms, ", "))
	}
}

func (w *Writer) kv(key, value string) {
	_, _ = fmt.Fprintf(w.out, "  %s %s\n", w.styles.Label.Render(fmt.Sprintf("%-15s", key)), value)
}
