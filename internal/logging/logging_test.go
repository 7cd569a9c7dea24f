package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"":        log.InfoLevel,
		"debug":   log.DebugLevel,
		" INFO ":  log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWriterLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, log.InfoLevel, "test")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}
	logger.Info("shown", "movie", 1)
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "movie=1") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRotatingWriterRollsOverBySize(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "moviegraph.log")
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	w := &RotatingWriter{BasePath: base, MaxBytes: 10, now: func() time.Time { return fixed }}
	defer w.Close()

	if _, err := w.Write([]byte("12345678")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := w.Write([]byte("abcdefgh")); err != nil {
		t.Fatalf("write: %v", err)
	}
	first := filepath.Join(dir, "moviegraph-2026-10-18.log")
	second := filepath.Join(dir, "moviegraph-2026-10-18-2.log")
	if b, err := os.ReadFile(first); err != nil || string(b) != "12345678" {
		t.Fatalf("first file: %q (%v)", b, err)
	}
	if b, err := os.ReadFile(second); err != nil || string(b) != "abcdefgh" {
		t.Fatalf("second file: %q (%v)", b, err)
	}
}

func TestNewWithDashDisablesFile(t *testing.T) {
	logger, closer, err := New(Options{Level: "info", File: "-"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestRotatingWriterStartsNewFileEachDay(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "moviegraph.log")
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)
	w := &RotatingWriter{BasePath: base, now: func() time.Time { return now }}
	defer w.Close()

	if _, err := w.Write([]byte("late\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := w.Write([]byte("early\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if b, _ := os.ReadFile(filepath.Join(dir, "moviegraph-2026-10-18.log")); string(b) != "late\n" {
		t.Fatalf("unexpected first day content %q", b)
	}
	if b, _ := os.ReadFile(filepath.Join(dir, "moviegraph-2026-10-19.log")); string(b) != "early\n" {
		t.Fatalf("unexpected second day content %q", b)
	}
	if dest, err := os.Readlink(base); err == nil && dest != filepath.Join(dir, "moviegraph-2026-10-19.log") {
		t.Fatalf("base link points at %s", dest)
	}
}
