package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, mirrors output to a daily rotating file. "-" disables file output.
	File string
	// MaxFileBytes rolls the file over within a day once exceeded.
	MaxFileBytes int64
	// Prefix tags every line, e.g. "moviegraphd".
	Prefix string
}

// New builds a structured logger writing to stderr and, optionally, a rotating file.
// The returned closer releases the file and must be called on shutdown.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	var out io.Writer = os.Stderr
	var closer io.Closer = nopWriteCloser{w: io.Discard}
	if file := strings.TrimSpace(opts.File); file != "" && file != "-" {
		rot, err := NewRotatingWriter(opts.File, opts.MaxFileBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("init rotating log: %w", err)
		}
		out = io.MultiWriter(os.Stderr, rot)
		closer = rot
	}
	return NewWriterLogger(out, level, opts.Prefix), closer, nil
}

// NewWriterLogger creates a timestamped logger on w filtered at level.
func NewWriterLogger(w io.Writer, level log.Level, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Level:           level,
		Prefix:          prefix,
	})
}

// ParseLevel maps a config string onto a log level.
func ParseLevel(s string) (log.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return log.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
