package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingWriter is an io.WriteCloser over a family of dated log files.
//
// For BasePath logs/moviegraph.log it writes logs/moviegraph-2026-10-18.log, then
// logs/moviegraph-2026-10-18-2.log once MaxBytes would be exceeded, and starts over at
// the next UTC day. BasePath itself is kept as a symlink to the active segment.
type RotatingWriter struct {
	BasePath string
	MaxBytes int64

	now func() time.Time

	mu      sync.Mutex
	segment segment
	file    *os.File
	written int64
}

// segment identifies one file in the family.
type segment struct {
	day string // YYYY-MM-DD, UTC
	seq int    // 1 for the first file of the day
}

// NewRotatingWriter opens the current segment for basePath. "-" yields a discarding writer.
// maxBytes <= 0 disables size based rollover.
func NewRotatingWriter(basePath string, maxBytes int64) (io.WriteCloser, error) {
	if strings.TrimSpace(basePath) == "-" {
		return nopWriteCloser{w: io.Discard}, nil
	}
	w := &RotatingWriter{BasePath: basePath, MaxBytes: maxBytes, now: time.Now}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureSegment(0); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureSegment(int64(len(p))); err != nil {
		return 0, err
	}
	n, err := w.file.Write(p)
	w.written += int64(n)
	return n, err
}

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

// ensureSegment switches files when the day changes or the next write would overflow.
func (w *RotatingWriter) ensureSegment(next int64) error {
	day := w.clock().UTC().Format(time.DateOnly)
	switch {
	case w.file == nil || w.segment.day != day:
		return w.open(segment{day: day, seq: 1})
	case w.MaxBytes > 0 && w.written+next > w.MaxBytes:
		return w.open(segment{day: day, seq: w.segment.seq + 1})
	}
	return nil
}

func (w *RotatingWriter) clock() time.Time {
	if w.now == nil {
		return time.Now()
	}
	return w.now()
}

func (w *RotatingWriter) open(seg segment) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	path := w.segmentPath(seg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	w.file, w.segment, w.written = f, seg, size
	w.linkCurrent(path)
	return nil
}

func (w *RotatingWriter) segmentPath(seg segment) string {
	dir, name := filepath.Split(w.BasePath)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".log"
	}
	file := fmt.Sprintf("%s-%s%s", stem, seg.day, ext)
	if seg.seq > 1 {
		file = fmt.Sprintf("%s-%s-%d%s", stem, seg.day, seg.seq, ext)
	}
	return filepath.Join(dir, file)
}

// linkCurrent points BasePath at the active segment. Failures are ignored; the dated
// files are the source of truth.
func (w *RotatingWriter) linkCurrent(target string) {
	if dest, err := os.Readlink(w.BasePath); err == nil && dest == target {
		return
	}
	_ = os.Remove(w.BasePath)
	_ = os.Symlink(target, w.BasePath)
}

type nopWriteCloser struct{ w io.Writer }

func (n nopWriteCloser) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopWriteCloser) Close() error                { return nil }
