package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	// Initialize with global info level, but bridge module at debug
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"bridge": "debug",
			"gpio":   "warn",
		},
	})

	tests := []struct {
		module      string
		wantDebug   bool
		wantInfo    bool
		wantWarn    bool
		description string
	}{
		{"bridge", true, true, true, "bridge module should log debug (override to debug)"},
		{"gpio", false, false, true, "gpio module should only log warn (override to warn)"},
		{"other", false, true, true, "other module should log info (global default)"},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			logger := GetLogger(tt.module)
			handler := logger.Handler()

			gotDebug := handler.Enabled(context.Background(), slog.LevelDebug)
			gotInfo := handler.Enabled(context.Background(), slog.LevelInfo)
			gotWarn := handler.Enabled(context.Background(), slog.LevelWarn)

			if gotDebug != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, gotDebug, tt.wantDebug)
			}
			if gotInfo != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, gotInfo, tt.wantInfo)
			}
			if gotWarn != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, gotWarn, tt.wantWarn)
			}
		})
	}
}

func TestReinitializeUpdatesExistingLoggers(t *testing.T) {
	resetState()

	Initialize(Config{Level: "info", Format: "text"})
	logger := GetLogger("bridge")

	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("bridge logger should start at info level")
	}

	// Simulate a config reload lowering the bridge module to debug
	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"bridge": "debug"},
	})

	logger = GetLogger("bridge")
	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("bridge logger should log debug after reload")
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(handler).With("module", "test")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()

	if !strings.Contains(output, "debug message") {
		t.Error("Debug message not found in output")
	}
	if !strings.Contains(output, "info message") {
		t.Error("Info message not found in output")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message not found in output")
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)

	for _, msg := range []string{"one", "two", "three", "four"} {
		rb.Write(LogEntry{Message: msg})
	}

	if rb.Count() != 3 {
		t.Fatalf("Expected 3 entries, got %d", rb.Count())
	}

	entries := rb.ReadAll()
	if entries[0].Message != "two" || entries[2].Message != "four" {
		t.Errorf("Expected oldest entry 'two' and newest 'four', got %q and %q",
			entries[0].Message, entries[2].Message)
	}
}

func TestHTTPHandlerServesBufferedLogs(t *testing.T) {
	rb := NewRingBuffer(10)
	rb.Write(LogEntry{Level: "info", Module: "bridge", Message: "command dispatched"})

	rec := httptest.NewRecorder()
	HTTPHandler(rb).ServeHTTP(rec, httptest.NewRequest("GET", "/logs", nil))

	if rec.Code != 200 {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var entries []LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Response is not a JSON array: %v", err)
	}
	if len(entries) != 1 || entries[0].Message != "command dispatched" {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestHTTPHandlerEmptyBuffer(t *testing.T) {
	rec := httptest.NewRecorder()
	HTTPHandler(NewRingBuffer(10)).ServeHTTP(rec, httptest.NewRequest("GET", "/logs", nil))

	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("Expected empty JSON array, got %q", got)
	}
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewTextHandler(&buf1, nil)
	h2 := slog.NewTextHandler(&buf2, nil)

	// A single handler is passed through untouched
	if NewMultiHandler(h1) != slog.Handler(h1) {
		t.Error("Single handler should be returned as-is")
	}

	logger := slog.New(NewMultiHandler(h1, h2))
	logger.Info("fan out")

	if !strings.Contains(buf1.String(), "fan out") || !strings.Contains(buf2.String(), "fan out") {
		t.Error("Record did not reach all handlers")
	}
}

func TestBufferHandlerCapturesAttrs(t *testing.T) {
	rb := NewRingBuffer(10)
	h := NewBufferHandler(rb, slog.LevelInfo)
	logger := slog.New(h).With("module", "bridge")

	logger.Info("command dispatched", "command", "blink")

	entries := rb.ReadAll()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Module != "bridge" {
		t.Errorf("Expected module bridge, got %q", entries[0].Module)
	}
	if entries[0].Attributes["command"] != "blink" {
		t.Errorf("Expected command attribute blink, got %v", entries[0].Attributes["command"])
	}
}
