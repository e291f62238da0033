package config

import (
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type watchedSettings struct {
	DebounceMs int    `toml:"debounce_ms"`
	Level      string `toml:"level"`
}

func loadWatchedSettings(path string) (watchedSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return watchedSettings{}, err
	}
	var s watchedSettings
	err = toml.Unmarshal(data, &s)
	return s, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeTempSettings(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "settings_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })
	tmpFile.WriteString(content)
	tmpFile.Close()
	return tmpFile.Name()
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	path := writeTempSettings(t, "debounce_ms = 50\nlevel = \"info\"\n")

	received := make(chan watchedSettings, 1)
	watcher := NewConfigWatcher(
		path,
		loadWatchedSettings,
		newTestLogger(),
		WithDebounce[watchedSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(s watchedSettings) {
		received <- s
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer watcher.Stop()

	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	if writeErr := os.WriteFile(path, []byte("debounce_ms = 100\nlevel = \"debug\"\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case s := <-received:
		if s.DebounceMs != 100 || s.Level != "debug" {
			t.Errorf("got %+v, want debounce_ms=100, level=debug", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := writeTempSettings(t, "debounce_ms = 50\n")

	errorReceived := make(chan error, 1)
	settingsReceived := make(chan watchedSettings, 1)

	watcher := NewConfigWatcher(
		path,
		loadWatchedSettings,
		newTestLogger(),
		WithDebounce[watchedSettings](50*time.Millisecond),
		WithErrorHandler[watchedSettings](func(err error) {
			errorReceived <- err
		}),
	)

	watcher.OnReload(func(s watchedSettings) {
		settingsReceived <- s
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer watcher.Stop()

	// Write invalid TOML
	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(path, []byte("invalid toml [[["), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case <-errorReceived:
		// Expected
	case <-settingsReceived:
		t.Fatal("reload handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := writeTempSettings(t, "debounce_ms = 1\n")

	var count1, count2 atomic.Int32
	watcher := NewConfigWatcher(
		path,
		loadWatchedSettings,
		newTestLogger(),
		WithDebounce[watchedSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ watchedSettings) { count1.Add(1) })
	unsub2 := watcher.OnReload(func(_ watchedSettings) { count2.Add(1) })

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(path, []byte("debounce_ms = 10\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	unsub2()

	if writeErr := os.WriteFile(path, []byte("debounce_ms = 20\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count1.Load(); got != 2 {
		t.Errorf("handler1: expected 2 calls, got %d", got)
	}
	if got := count2.Load(); got != 1 {
		t.Errorf("handler2: expected 1 call, got %d", got)
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := writeTempSettings(t, "debounce_ms = 1\n")

	var count atomic.Int32
	watcher := NewConfigWatcher(
		path,
		loadWatchedSettings,
		newTestLogger(),
		WithDebounce[watchedSettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ watchedSettings) {
		count.Add(1)
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}

	time.Sleep(100 * time.Millisecond)

	if stopErr := watcher.Stop(); stopErr != nil {
		t.Fatal(stopErr)
	}

	// Changes after stop should not trigger handler
	if writeErr := os.WriteFile(path, []byte("debounce_ms = 99\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}
