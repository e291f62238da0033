// Package button correlates a press with its subsequent release and
// classifies the interaction by hold duration.
package button

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/gpiobridge/internal/events"
)

// DefaultThreshold separates a click from a long press.
const DefaultThreshold = 2 * time.Second

// Timer tracks the pending press for the single physical button and
// publishes a classified interaction on release. If multi-button support is
// ever needed this becomes a map from button identity to pending timestamp.
type Timer struct {
	bus       *events.Bus
	logger    *slog.Logger
	threshold time.Duration
	now       func() time.Time

	mu         sync.Mutex
	pressStart time.Time
	initAt     time.Time
}

// Option configures a Timer.
type Option func(*Timer)

// WithThreshold overrides the click/long-press boundary.
func WithThreshold(d time.Duration) Option {
	return func(t *Timer) { t.threshold = d }
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// NewTimer creates a button timer publishing onto bus.
func NewTimer(bus *events.Bus, logger *slog.Logger, opts ...Option) *Timer {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Timer{
		bus:       bus,
		logger:    logger,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.initAt = t.now()
	return t
}

// Press records the monotonic start time of the hold.
func (t *Timer) Press() {
	now := t.now()

	t.mu.Lock()
	t.pressStart = now
	t.mu.Unlock()

	t.logger.Debug("Button pressed")
	if t.bus != nil {
		t.bus.Publish(events.ButtonPressedEvent{
			Timestamp: now.Format(time.RFC3339),
		})
	}
}

// Release computes the hold duration, classifies it and publishes the
// interaction. A release with no recorded press falls back to the timer's
// initialization time; the debounced source should make that impossible,
// but it must not crash.
func (t *Timer) Release() {
	now := t.now()

	t.mu.Lock()
	start := t.pressStart
	if start.IsZero() {
		start = t.initAt
		t.logger.Debug("Release without recorded press, using init time")
	}
	t.mu.Unlock()

	duration := now.Sub(start)
	interaction := events.ButtonInteractionEvent{
		Kind:     Classify(duration, t.threshold),
		Duration: duration.Seconds(),
	}

	t.logger.Debug("Button released",
		"kind", interaction.Kind,
		"duration", interaction.Duration)

	if t.bus != nil {
		t.bus.Publish(events.ButtonReleasedEvent{
			Timestamp: now.Format(time.RFC3339),
		})
		t.bus.Publish(interaction)
	}
}

// Classify maps a hold duration to an interaction kind. Exactly at the
// threshold counts as a long press.
func Classify(duration, threshold time.Duration) string {
	if duration < threshold {
		return events.KindClick
	}
	return events.KindLongPress
}
