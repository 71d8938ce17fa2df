package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

// LogEntry represents a parsed JSON log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // minimum level shown
	Pattern *regexp.Regexp // raw-line filter
	NoColor bool
}

// Viewer reads, filters and formats iconify log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	levels map[string]lipgloss.Style
}

// NewViewer creates a new log viewer writing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{
		config: cfg,
		out:    out,
		levels: map[string]lipgloss.Style{
			"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
	}
}

// Tail returns the matching entries among the last n lines of path.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Ring of the last n lines
	lines := make([]string, 0, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(lines) == n {
			lines = lines[1:]
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for _, line := range lines {
		if e := ParseLine(line); v.matches(e) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Follow sends matching entries appended to path until ctx is done.
// Writes are picked up through fsnotify; a slow poll covers filesystems
// where events are not delivered.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	var events chan fsnotify.Event
	pollEvery := 100 * time.Millisecond
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		defer func() { _ = fsw.Close() }()
		if err := fsw.Add(path); err == nil {
			events = fsw.Events
			pollEvery = time.Second
		}
	}

	reader := bufio.NewReader(file)
	var partial string
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&fsnotify.Write == 0 {
				continue
			}
		case <-ticker.C:
		}
		if !v.drain(ctx, reader, &partial, entries) {
			return nil
		}
	}
}

// drain sends every complete line available from r. An unterminated tail is
// kept in partial for the next call. It reports false when ctx ended while
// sending.
func (v *Viewer) drain(ctx context.Context, r *bufio.Reader, partial *string, entries chan<- LogEntry) bool {
	for {
		chunk, err := r.ReadString('\n')
		if err != nil {
			*partial += chunk
			return true
		}
		line := strings.TrimSuffix(*partial+chunk, "\n")
		*partial = ""
		if line == "" {
			continue
		}
		if e := ParseLine(line); v.matches(e) {
			select {
			case entries <- e:
			case <-ctx.Done():
				return false
			}
		}
	}
}

// Print writes entries to the viewer output, one per line.
func (v *Viewer) Print(entries []LogEntry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(e))
	}
}

// FormatEntry renders e as "15:04:05.000 LEVEL msg k=v ...", attributes sorted by key.
func (v *Viewer) FormatEntry(e LogEntry) string {
	if !e.IsValid {
		return e.Raw
	}

	level := strings.ToUpper(e.Level)
	if len(level) > 5 {
		level = level[:5]
	}
	label := fmt.Sprintf("%-5s", level)
	if style, ok := v.levels[level]; ok && !v.config.NoColor {
		label = style.Render(label)
	}

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(e.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(label)
	b.WriteByte(' ')
	b.WriteString(e.Msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}

// ParseLine parses one JSON log line. Lines that are not JSON come back with
// IsValid false and only Raw set.
func ParseLine(line string) LogEntry {
	e := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return e
	}
	e.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			e.Time = parsed
		}
	}
	e.Level, _ = data["level"].(string)
	e.Msg, _ = data["msg"].(string)

	e.Attrs = make(map[string]any, len(data))
	for k, val := range data {
		if k != "time" && k != "level" && k != "msg" {
			e.Attrs[k] = val
		}
	}
	return e
}

func (v *Viewer) matches(e LogEntry) bool {
	if v.config.Level != "" && e.IsValid {
		if LevelFromString(e.Level) < LevelFromString(v.config.Level) {
			return false
		}
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(e.Raw) {
		return false
	}
	return true
}
