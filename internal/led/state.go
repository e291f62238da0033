package led

// Color holds the three channel intensities, each in [0, 1].
// 1.0 is full brightness; the active-low electrical polarity is handled
// by the pin abstraction.
type Color struct {
	R float64
	G float64
	B float64
}

// Ready is the dim green-white shown at startup before the command loop begins.
var Ready = Color{R: 0.15, G: 0.2, B: 0.15}

// Mode enumerates the visual states the LED can be in.
type Mode int

const (
	ModeOff Mode = iota
	ModeSolid
	ModePulse
	ModeBlink
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSolid:
		return "solid"
	case ModePulse:
		return "pulse"
	case ModeBlink:
		return "blink"
	default:
		return "off"
	}
}

// State is the single current LED state. Exactly one is active at a time;
// a new command atomically replaces it.
type State struct {
	Mode Mode

	// Solid and Blink
	Color Color

	// Pulse
	OnColor  Color
	OffColor Color
	FadeIn   float64
	FadeOut  float64

	// Blink
	OnTime  float64
	OffTime float64
}
