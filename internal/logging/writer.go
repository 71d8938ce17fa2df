package logging

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// RotatingWriter implements io.Writer with size-based rotation.
// iconify.log is renamed to iconify.log.1, .1 to .2 and so on; files numbered
// maxFiles or higher are removed.
//
// Several processes (serve, mcp and one-shot commands) append to the same
// file, so rotation is serialized across processes by <path>.lock.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int
	lock     *flock.Flock

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool
}

// NewRotatingWriter creates a rotating writer for path, creating its directory.
// Each write is synced so `iconify logs -f` sees it immediately.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:          path,
		maxSize:       int64(maxSizeMB) * 1024 * 1024,
		maxFiles:      maxFiles,
		lock:          flock.New(path + ".lock"),
		immediateSync: true,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync enables or disables the sync after each write.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write implements io.Writer, rotating first when p would overflow the file.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written > 0 && w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		if err := w.openFile(); err != nil {
			return 0, err
		}
	}

	n, err = w.file.Write(p)
	w.written += int64(n)
	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotate shifts numbered backups up by one and starts a fresh file.
// If another process holds the lock, or already rotated, it only reopens.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	locked, err := w.lock.TryLock()
	if err != nil || !locked {
		return w.openFile()
	}
	defer func() { _ = w.lock.Unlock() }()

	// Shrunk since we last wrote: someone else rotated
	if info, err := os.Stat(w.path); err == nil && info.Size() < w.written {
		return w.openFile()
	}

	base := filepath.Base(w.path)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(w.path), base+".*"))
	if err != nil {
		return fmt.Errorf("failed to find rotated files: %w", err)
	}

	type backup struct {
		path string
		num  int
	}
	var backups []backup
	for _, m := range matches {
		num, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), base+"."))
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: m, num: num})
	}
	// Highest first so renames never overwrite
	slices.SortFunc(backups, func(a, b backup) int { return cmp.Compare(b.num, a.num) })

	for _, b := range backups {
		if b.num >= w.maxFiles {
			_ = os.Remove(b.path)
			continue
		}
		_ = os.Rename(b.path, fmt.Sprintf("%s.%d", w.path, b.num+1))
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.path+".1"); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.written = 0
	return w.openFile()
}
