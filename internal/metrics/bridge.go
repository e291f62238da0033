// Package metrics provides Prometheus metrics for the bridge protocol and
// the button/LED subsystems.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/gpiobridge/internal/events"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpiobridge",
		Subsystem: "bridge",
		Name:      "commands_total",
		Help:      "Commands dispatched, by command name",
	}, []string{"command"})

	commandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpiobridge",
		Subsystem: "bridge",
		Name:      "command_errors_total",
		Help:      "Skipped command lines, by failure reason",
	}, []string{"reason"})

	buttonEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpiobridge",
		Subsystem: "button",
		Name:      "events_total",
		Help:      "Classified button interactions, by kind",
	}, []string{"kind"})

	pressDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gpiobridge",
		Subsystem: "button",
		Name:      "press_duration_seconds",
		Help:      "Button hold durations",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10},
	})

	ledMode = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gpiobridge",
		Subsystem: "led",
		Name:      "mode",
		Help:      "Current LED mode (1 for the active mode, 0 otherwise)",
	}, []string{"mode"})
)

var ledModes = []string{"off", "solid", "pulse", "blink"}

// CommandReceived counts a dispatched command.
func CommandReceived(name string) {
	commandsTotal.WithLabelValues(name).Inc()
}

// CommandFailed counts a skipped command line.
func CommandFailed(reason string) {
	commandErrors.WithLabelValues(reason).Inc()
}

// Observe subscribes metric updates to bus events. Returns an unsubscribe
// function.
func Observe(bus *events.Bus) func() {
	unsubButton := bus.Subscribe(func(e events.ButtonInteractionEvent) {
		buttonEvents.WithLabelValues(e.Kind).Inc()
		pressDuration.Observe(e.Duration)
	})

	unsubLed := bus.Subscribe(func(e events.LedStateChangedEvent) {
		for _, mode := range ledModes {
			if mode == e.Mode {
				ledMode.WithLabelValues(mode).Set(1)
			} else {
				ledMode.WithLabelValues(mode).Set(0)
			}
		}
	})

	return func() {
		unsubButton()
		unsubLed()
	}
}
