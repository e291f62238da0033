package nats

import (
	"encoding/json"
	"fmt"
)

// Subject prefixes for NATS topics.
const (
	SubjectButtonPrefix = "gpiobridge.button"
	SubjectLedPrefix    = "gpiobridge.led"
)

// SubjectButtonEvents returns the NATS subject for classified button events.
func SubjectButtonEvents(nodeID string) string {
	return fmt.Sprintf("%s.%s.events", SubjectButtonPrefix, nodeID)
}

// SubjectLedState returns the NATS subject for LED state changes.
func SubjectLedState(nodeID string) string {
	return fmt.Sprintf("%s.%s.state", SubjectLedPrefix, nodeID)
}

// ButtonMessage represents a classified button interaction sent over NATS.
type ButtonMessage struct {
	NodeID    string  `json:"node_id"`
	Timestamp string  `json:"timestamp"`
	Kind      string  `json:"kind"` // button_click, button_long_press
	Duration  float64 `json:"duration"`
}

// Marshal serializes the message to JSON.
func (m ButtonMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// LedStateMessage represents an LED state change sent over NATS.
type LedStateMessage struct {
	NodeID    string `json:"node_id"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"` // off, solid, pulse, blink
}

// Marshal serializes the message to JSON.
func (m LedStateMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}
