package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/YujiSuzuki/vitecsp/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("disabled logger drops events", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(config.AuditConfig{Enabled: false}, &buf)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer logger.Close()

		logger.Log(context.Background(), Event{Type: EventPatch, Result: ResultSuccess})
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("file logger", func(t *testing.T) {
		tmpDir := t.TempDir()
		logFile := filepath.Join(tmpDir, "audit.log")

		cfg := config.AuditConfig{
			Enabled: true,
			File:    logFile,
			Events:  config.AuditEvents{Patch: true},
		}

		logger, err := New(cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer logger.Close()

		if logger.file == nil {
			t.Error("expected file to be non-nil for file logger")
		}
		if _, err := os.Stat(logFile); os.IsNotExist(err) {
			t.Error("expected log file to be created")
		}
	})

	t.Run("unwritable file", func(t *testing.T) {
		cfg := config.AuditConfig{
			Enabled: true,
			File:    filepath.Join(t.TempDir(), "missing", "audit.log"),
		}
		if _, err := New(cfg, nil); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestLoggerLog(t *testing.T) {
	t.Run("logs patch event", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.AuditConfig{
			Enabled: true,
			Events:  config.AuditEvents{Patch: true},
		}
		logger, err := New(cfg, &buf)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		logger.Log(context.Background(), Event{
			Type:       EventPatch,
			File:       "/work/vite.config.ts",
			Backup:     "/work/vite.config.ts.backup.1760000000000",
			Result:     ResultSuccess,
			DurationMs: 3,
			Details:    map[string]any{"warnings": []string{"import block not recognized"}},
		})

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("failed to parse audit line %q: %v", buf.String(), err)
		}

		want := map[string]any{
			"msg":         "audit_event",
			"event_type":  "patch",
			"file":        "/work/vite.config.ts",
			"backup":      "/work/vite.config.ts.backup.1760000000000",
			"result":      "success",
			"duration_ms": float64(3),
		}
		for k, v := range want {
			if entry[k] != v {
				t.Errorf("entry[%q] = %v, want %v", k, entry[k], v)
			}
		}
		if _, ok := entry["details"]; !ok {
			t.Error("expected details in entry")
		}
	})

	t.Run("respects event filter", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.AuditConfig{
			Enabled: true,
			Events:  config.AuditEvents{Patch: true, AddSource: false, Skipped: false},
		}
		logger, err := New(cfg, &buf)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		logger.Log(context.Background(), Event{Type: EventAddSource, Result: ResultSuccess})
		logger.Log(context.Background(), Event{Type: EventSkipped, Result: ResultSkipped})
		if buf.Len() != 0 {
			t.Errorf("expected filtered events to be dropped, got %q", buf.String())
		}

		logger.Log(context.Background(), Event{Type: EventPatch, Result: ResultError, ErrorMessage: "backup failed"})
		if !strings.Contains(buf.String(), `"error":"backup failed"`) {
			t.Errorf("expected error message in output, got %q", buf.String())
		}
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		var logger *Logger
		logger.Log(context.Background(), Event{Type: EventPatch})
		if err := logger.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestMeasureDuration(t *testing.T) {
	start := time.Now().Add(-50 * time.Millisecond)
	if d := MeasureDuration(start); d < 50 {
		t.Errorf("MeasureDuration() = %d, want >= 50", d)
	}
}
