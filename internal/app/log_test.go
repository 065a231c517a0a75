package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFolioHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name      string
		sessionID string
		level     slog.Level
		message   string
		attrs     []slog.Attr
		want      string
	}{
		{
			name:      "basic info message",
			sessionID: "20240615T143045Z/contact submit",
			level:     slog.LevelInfo,
			message:   "contact message received",
			want:      "2024-06-15T14:30:45Z\tINFO\t20240615T143045Z/contact submit\tcontact message received\n",
		},
		{
			name:      "debug level",
			sessionID: "s-1",
			level:     slog.LevelDebug,
			message:   "collections loaded",
			want:      "2024-06-15T14:30:45Z\tDEBUG\ts-1\tcollections loaded\n",
		},
		{
			name:      "with record attrs",
			sessionID: "s-2",
			level:     slog.LevelWarn,
			message:   "document unreadable, using fallback",
			attrs:     []slog.Attr{slog.String("key", "projects"), slog.Int("bytes", 42)},
			want:      "2024-06-15T14:30:45Z\tWARN\ts-2\tdocument unreadable, using fallback\tkey=projects\tbytes=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &folioHandler{w: &buf, sessionID: tt.sessionID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestFolioHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &folioHandler{w: &buf, sessionID: "s-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "poller")}).(*folioHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "tick", 0)
	r.AddAttrs(slog.Int("count", 3))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=poller") {
		t.Errorf("expected pre-set attr component=poller, got: %q", got)
	}
	if !strings.Contains(got, "count=3") {
		t.Errorf("expected record attr count=3, got: %q", got)
	}
}

func TestFolioHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &folioHandler{w: &buf, sessionID: "s-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*folioHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestFolioHandler_Enabled(t *testing.T) {
	t.Run("nil level enables everything", func(t *testing.T) {
		h := &folioHandler{}
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			if !h.Enabled(context.Background(), level) {
				t.Errorf("Enabled(%v) = false, want true", level)
			}
		}
	})

	t.Run("filters below the configured level", func(t *testing.T) {
		h := &folioHandler{level: slog.LevelWarn}
		tests := map[slog.Level]bool{
			slog.LevelDebug: false,
			slog.LevelInfo:  false,
			slog.LevelWarn:  true,
			slog.LevelError: true,
		}
		for level, want := range tests {
			if got := h.Enabled(context.Background(), level); got != want {
				t.Errorf("Enabled(%v) = %v, want %v", level, got, want)
			}
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestZapLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newZapLogger(&buf, slog.LevelInfo, "s-9")

	logger.Debug("hidden")
	logger.Info("project created", "id", "p1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if entry["msg"] != "project created" {
		t.Errorf("msg = %v, want %q", entry["msg"], "project created")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want %q", entry["level"], "info")
	}
	if entry["session"] != "s-9" {
		t.Errorf("session = %v, want %q", entry["session"], "s-9")
	}
	if entry["id"] != "p1" {
		t.Errorf("id = %v, want %q", entry["id"], "p1")
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json", ""} {
		t.Run("format "+format, func(t *testing.T) {
			dir := t.TempDir()

			logger, f, err := newLogger(dir, format, "debug", "s-1")
			if err != nil {
				t.Fatalf("newLogger() error = %v", err)
			}
			defer f.Close()

			if logger == nil {
				t.Fatal("newLogger() returned nil logger")
			}
			if f == nil {
				t.Fatal("newLogger() returned nil file")
			}

			logger.Info("hello", "k", "v")

			data, err := os.ReadFile(filepath.Join(dir, "folio.log"))
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if !strings.Contains(string(data), "hello") {
				t.Errorf("log file = %q, want it to contain %q", data, "hello")
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		if _, _, err := newLogger(t.TempDir(), "xml", "", "s-1"); err == nil {
			t.Error("newLogger() expected error for unknown format")
		}
	})

	t.Run("bad level", func(t *testing.T) {
		if _, _, err := newLogger(t.TempDir(), "text", "loud", "s-1"); err == nil {
			t.Error("newLogger() expected error for bad level")
		}
	})
}
