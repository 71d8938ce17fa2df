// Package output provides consistent CLI output formatting.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer that colors output only when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	styles := NoColorStyles()
	if UseColor(out) {
		styles = DefaultStyles()
	}
	return &Writer{out: out, styles: styles}
}

// NewWithStyles creates a Writer with explicit styles.
func NewWithStyles(out io.Writer, styles Styles) *Writer {
	return &Writer{out: out, styles: styles}
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Status prints a status message with a leading marker.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(marker, msg string) {
	if marker != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", marker, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(marker, format string, args ...any) {
	w.Status(marker, fmt.Sprintf(format, args...))
}

// Header prints a bold section title.
func (w *Writer) Header(title string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(title))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Dim prints a de-emphasized line.
func (w *Writer) Dim(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Dim.Render(msg))
}

// Code prints a block with every line indented.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
