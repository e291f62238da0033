package bridge

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/smazurov/gpiobridge/internal/events"
)

// Emitter serializes classified button interactions onto the output stream,
// one JSON object per line. Writes go straight to the underlying writer so
// consumers see events promptly; emission is fire-and-forget.
type Emitter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewEmitter creates an emitter writing to w.
func NewEmitter(w io.Writer, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{w: w, logger: logger}
}

// Attach subscribes the emitter to button interactions on the bus.
// Returns the unsubscribe function.
func (e *Emitter) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func(ev events.ButtonInteractionEvent) {
		e.Emit(ev)
	})
}

// Emit writes one event line. Failures are diagnostics only; the event
// stream carries nothing but events.
func (e *Emitter) Emit(ev events.ButtonInteractionEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		e.logger.Error("Failed to encode event", "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(append(data, '\n')); err != nil {
		e.logger.Error("Failed to write event", "error", err)
	}
}
