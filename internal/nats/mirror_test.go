package nats

import (
	"testing"
	"time"

	"github.com/smazurov/gpiobridge/internal/events"
)

func TestSubjects(t *testing.T) {
	if got := SubjectButtonEvents("node1"); got != "gpiobridge.button.node1.events" {
		t.Errorf("Unexpected button subject: %s", got)
	}
	if got := SubjectLedState("node1"); got != "gpiobridge.led.node1.state" {
		t.Errorf("Unexpected led subject: %s", got)
	}
}

func TestMirror_OfflinePublishIsNoop(t *testing.T) {
	m := NewMirror("nats://localhost:4222", "test", nil)

	bus := events.New()
	m.Attach(bus)
	defer m.Close()

	// Never connected; publishing must not panic or block
	bus.Publish(events.ButtonInteractionEvent{Kind: events.KindClick, Duration: 0.2})
	bus.Publish(events.LedStateChangedEvent{
		Mode:      "blink",
		Timestamp: time.Now().Format(time.RFC3339),
	})

	if m.IsConnected() {
		t.Error("Mirror should not report connected without a connection")
	}
}

func TestLedStateMessageCarriesEventTimestamp(t *testing.T) {
	stamp := time.Now().Format(time.RFC3339)
	ev := events.LedStateChangedEvent{Mode: "pulse", Timestamp: stamp}

	// The event timestamp is already RFC3339; the message reuses it verbatim
	msg := LedStateMessage{NodeID: "node1", Timestamp: ev.Timestamp, Mode: ev.Mode}
	if msg.Timestamp != stamp {
		t.Errorf("Expected timestamp %s, got %s", stamp, msg.Timestamp)
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Errorf("Timestamp is not RFC3339: %v", err)
	}
}
