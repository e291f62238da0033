package nats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/gpiobridge/internal/events"
)

// Mirror forwards button and LED events to a NATS server for fleet
// telemetry. Gracefully degrades when NATS is unavailable: publishing
// becomes a no-op and the host protocol on stdout is unaffected.
type Mirror struct {
	url       string
	nodeID    string
	conn      *nats.Conn
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	unsub     func()
}

// NewMirror creates a telemetry mirror for this node.
func NewMirror(url, nodeID string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}

	return &Mirror{
		url:    url,
		nodeID: nodeID,
		logger: logger.With("component", "nats-mirror", "node_id", nodeID),
	}
}

// Connect establishes a connection to the NATS server.
// Returns the connection error, but callers may ignore it: the mirror
// keeps reconnecting in the background and publishes no-op until then.
func (m *Mirror) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	opts := []nats.Option{
		nats.Name("gpiobridge-" + m.nodeID),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			m.mu.Lock()
			m.connected = false
			m.mu.Unlock()
			if err != nil {
				m.logger.Warn("NATS disconnected", "error", err)
			} else {
				m.logger.Debug("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			m.mu.Lock()
			m.connected = true
			m.mu.Unlock()
			m.logger.Info("NATS reconnected")
		}),
		nats.ConnectHandler(func(_ *nats.Conn) {
			m.logger.Debug("NATS connected")
		}),
	}

	conn, err := nats.Connect(m.url, opts...)
	if err != nil {
		m.logger.Warn("Failed to connect to NATS, running in offline mode", "error", err)
		return err
	}

	m.conn = conn
	m.connected = true
	m.logger.Info("Connected to NATS", "url", m.url)
	return nil
}

// Attach subscribes the mirror to bus events. Safe to call before Connect;
// events arriving while disconnected are dropped.
func (m *Mirror) Attach(bus *events.Bus) {
	unsubButton := bus.Subscribe(func(e events.ButtonInteractionEvent) {
		m.publishButton(e)
	})
	unsubLed := bus.Subscribe(func(e events.LedStateChangedEvent) {
		m.publishLedState(e)
	})

	m.mu.Lock()
	m.unsub = func() {
		unsubButton()
		unsubLed()
	}
	m.mu.Unlock()
}

func (m *Mirror) publishButton(e events.ButtonInteractionEvent) {
	msg := ButtonMessage{
		NodeID:    m.nodeID,
		Timestamp: time.Now().Format(time.RFC3339),
		Kind:      e.Kind,
		Duration:  e.Duration,
	}
	m.publish(SubjectButtonEvents(m.nodeID), msg.Marshal)
}

func (m *Mirror) publishLedState(e events.LedStateChangedEvent) {
	msg := LedStateMessage{
		NodeID:    m.nodeID,
		Timestamp: e.Timestamp,
		Mode:      e.Mode,
	}
	m.publish(SubjectLedState(m.nodeID), msg.Marshal)
}

// publish sends a message to NATS. No-op if not connected.
func (m *Mirror) publish(subject string, marshal func() ([]byte, error)) {
	m.mu.RLock()
	conn := m.conn
	connected := m.connected
	m.mu.RUnlock()

	if conn == nil || !connected {
		return
	}

	data, err := marshal()
	if err != nil {
		m.logger.Warn("Failed to marshal message", "subject", subject, "error", err)
		return
	}

	if err := conn.Publish(subject, data); err != nil {
		m.logger.Warn("Failed to publish message", "subject", subject, "error", err)
	}
}

// IsConnected returns true if connected to NATS.
func (m *Mirror) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected && m.conn != nil
}

// Close detaches from the bus and closes the NATS connection.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}

	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}

	m.connected = false
	m.logger.Debug("NATS mirror closed")
}
