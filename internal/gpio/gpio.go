// Package gpio is the pin abstraction for the RGB LED and the button.
//
// The LED channels are wired active-low (common anode): a stored intensity
// of 1.0 drives the electrical signal low. Callers always work in logical
// intensities where 1.0 means full brightness; the polarity inversion is
// internal to the drivers. Intensities outside [0, 1] are clamped by the
// drivers - this is the implementation-defined behavior for out-of-range
// values, callers should validate upstream.
package gpio

import "time"

// Default pin assignment (BCM numbering) and tunables.
const (
	DefaultRedPin    = 17
	DefaultGreenPin  = 27
	DefaultBluePin   = 24
	DefaultButtonPin = 26

	// DefaultDebounce suppresses contact bounce on the button. Tuned so a
	// long-press release is not misread as a subsequent short interaction.
	DefaultDebounce = 50 * time.Millisecond
)

// Config carries the pin assignment and button debounce interval.
type Config struct {
	RedPin    int
	GreenPin  int
	BluePin   int
	ButtonPin int
	Debounce  time.Duration
}

// DefaultConfig returns the standard wiring for the bridge HAT.
func DefaultConfig() Config {
	return Config{
		RedPin:    DefaultRedPin,
		GreenPin:  DefaultGreenPin,
		BluePin:   DefaultBluePin,
		ButtonPin: DefaultButtonPin,
		Debounce:  DefaultDebounce,
	}
}

// Device abstracts the hardware behind the bridge: an RGB output with
// independent intensity channels and a button with debounced press/release
// notifications.
type Device interface {
	// SetRGB writes the three channel intensities. Values outside [0, 1]
	// are clamped.
	SetRGB(r, g, b float64) error

	// OnPress registers the handler invoked on a debounced press.
	// Must be called before Start.
	OnPress(fn func())

	// OnRelease registers the handler invoked on a debounced release.
	// Must be called before Start.
	OnRelease(fn func())

	// SetDebounce changes the debounce interval at runtime.
	SetDebounce(d time.Duration)

	// Start begins delivering button notifications and driving the LED.
	Start() error

	// Close stops all background activity and drives the LED off.
	Close() error
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
