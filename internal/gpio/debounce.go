package gpio

import "time"

// debouncer filters raw button samples into clean press/release transitions.
// A transition is accepted only when the level actually changed and the
// minimum interval since the last accepted transition has elapsed.
type debouncer struct {
	interval time.Duration
	pressed  bool
	last     time.Time
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// observe feeds one sample. It returns true when the sample constitutes an
// accepted transition; the new level is then reflected in d.pressed.
func (d *debouncer) observe(pressed bool, now time.Time) bool {
	if pressed == d.pressed {
		return false
	}
	if !d.last.IsZero() && now.Sub(d.last) < d.interval {
		// Bounce: level flipped back within the suppression window
		return false
	}
	d.pressed = pressed
	d.last = now
	return true
}

func (d *debouncer) setInterval(interval time.Duration) {
	d.interval = interval
}
