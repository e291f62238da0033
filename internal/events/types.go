package events

// Event type constants for kelindar/event.
const (
	TypeButtonPressed uint32 = iota + 1
	TypeButtonReleased
	TypeButtonInteraction
	TypeLedStateChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// Button interaction kinds, derived solely from hold duration.
const (
	KindClick     = "button_click"
	KindLongPress = "button_long_press"
)

// ButtonPressedEvent is published when the debounced button goes down.
type ButtonPressedEvent struct {
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for ButtonPressedEvent.
func (e ButtonPressedEvent) Type() uint32 { return TypeButtonPressed }

// ButtonReleasedEvent is published when the debounced button comes up.
type ButtonReleasedEvent struct {
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for ButtonReleasedEvent.
func (e ButtonReleasedEvent) Type() uint32 { return TypeButtonReleased }

// ButtonInteractionEvent is a classified press/release pair.
// Kind is KindClick for holds under the threshold, KindLongPress otherwise.
type ButtonInteractionEvent struct {
	Kind     string  `json:"event"`
	Duration float64 `json:"duration"`
}

// Type returns the event type identifier for ButtonInteractionEvent.
func (e ButtonInteractionEvent) Type() uint32 { return TypeButtonInteraction }

// LedStateChangedEvent is published whenever a command replaces the LED state.
// Consumed by the NATS mirror and metrics subscribers.
type LedStateChangedEvent struct {
	Mode      string `json:"mode"` // off, solid, pulse, blink
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for LedStateChangedEvent.
func (e LedStateChangedEvent) Type() uint32 { return TypeLedStateChanged }
