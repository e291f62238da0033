// Package led owns the LED state and renders it onto the pin abstraction.
//
// Pulse and blink run as background goroutines so the command loop is never
// blocked; issuing any new command cancels the running pattern and waits for
// it to stop before the replacement starts, guaranteeing at most one active
// pattern.
package led

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/gpiobridge/internal/events"
)

// pulseFPS is the interpolation rate for pulse fades.
const pulseFPS = 25

// Output is the subset of the pin abstraction the controller needs.
type Output interface {
	SetRGB(r, g, b float64) error
}

// Controller translates visual intents into pin writes. All public
// operations are atomic state replacements.
type Controller struct {
	out    Output
	bus    *events.Bus
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller in the Off state. bus may be nil.
func NewController(out Output, bus *events.Bus, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		out:    out,
		bus:    bus,
		logger: logger,
		state:  State{Mode: ModeOff},
	}
}

// SetColor replaces the current state with Solid(c). Channel values outside
// [0, 1] are passed through to the pin abstraction, which clamps them.
func (c *Controller) SetColor(col Color) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if err := c.out.SetRGB(col.R, col.G, col.B); err != nil {
		return err
	}
	c.state = State{Mode: ModeSolid, Color: col}
	c.publishLocked()
	return nil
}

// Pulse replaces the current state with a repeating fade from offColor to
// onColor over fadeIn seconds and back over fadeOut seconds.
func (c *Controller) Pulse(onColor, offColor Color, fadeIn, fadeOut float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	// First frame written synchronously so hardware rejection surfaces
	// as a command error instead of a background log line.
	if err := c.out.SetRGB(offColor.R, offColor.G, offColor.B); err != nil {
		return err
	}
	c.state = State{
		Mode:     ModePulse,
		OnColor:  onColor,
		OffColor: offColor,
		FadeIn:   fadeIn,
		FadeOut:  fadeOut,
	}
	c.startLocked(func(ctx context.Context) {
		c.runPulse(ctx, onColor, offColor, fadeIn, fadeOut)
	})
	c.publishLocked()
	return nil
}

// Blink replaces the current state with color for onTime seconds and fully
// off for offTime seconds, repeating.
func (c *Controller) Blink(col Color, onTime, offTime float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if err := c.out.SetRGB(col.R, col.G, col.B); err != nil {
		return err
	}
	c.state = State{Mode: ModeBlink, Color: col, OnTime: onTime, OffTime: offTime}
	c.startLocked(func(ctx context.Context) {
		c.runBlink(ctx, col, onTime, offTime)
	})
	c.publishLocked()
	return nil
}

// Off stops any pattern and drives all channels to zero immediately.
func (c *Controller) Off() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if err := c.out.SetRGB(0, 0, 0); err != nil {
		return err
	}
	c.state = State{Mode: ModeOff}
	c.publishLocked()
	return nil
}

// State returns a snapshot of the current LED state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close stops any running pattern and turns the LED off.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	_ = c.out.SetRGB(0, 0, 0)
	c.state = State{Mode: ModeOff}
}

// stopLocked cancels the running animation and waits for its goroutine to
// exit, so the next state's writes never interleave with the old pattern.
func (c *Controller) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

// startLocked launches fn as the single background animation.
func (c *Controller) startLocked(fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		fn(ctx)
	}()
}

func (c *Controller) publishLocked() {
	c.logger.Debug("LED state changed", "mode", c.state.Mode.String())
	if c.bus != nil {
		c.bus.Publish(events.LedStateChangedEvent{
			Mode:      c.state.Mode.String(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

// runPulse linearly interpolates between the two colors at pulseFPS.
func (c *Controller) runPulse(ctx context.Context, on, off Color, fadeIn, fadeOut float64) {
	frame := time.Second / pulseFPS

	for ctx.Err() == nil {
		c.fade(ctx, off, on, fadeIn, frame)
		c.fade(ctx, on, off, fadeOut, frame)
	}
}

// fade writes interpolated frames from one color to another over the given
// number of seconds.
func (c *Controller) fade(ctx context.Context, from, to Color, seconds float64, frame time.Duration) {
	steps := int(seconds * pulseFPS)
	if steps < 1 {
		// Zero-length fade: jump straight to the target, one frame long
		c.write(to)
		sleepCtx(ctx, frame)
		return
	}

	for i := 1; i <= steps; i++ {
		if ctx.Err() != nil {
			return
		}
		t := float64(i) / float64(steps)
		c.write(lerp(from, to, t))
		sleepCtx(ctx, frame)
	}
}

// runBlink alternates between the color and off.
func (c *Controller) runBlink(ctx context.Context, col Color, onTime, offTime float64) {
	for ctx.Err() == nil {
		c.write(col)
		sleepCtx(ctx, secondsToDuration(onTime))
		if ctx.Err() != nil {
			return
		}
		c.write(Color{})
		sleepCtx(ctx, secondsToDuration(offTime))
	}
}

// write pushes a frame to the output; animation frames only log failures,
// the pattern keeps running.
func (c *Controller) write(col Color) {
	if err := c.out.SetRGB(col.R, col.G, col.B); err != nil {
		c.logger.Warn("LED write failed", "error", err)
	}
}

func lerp(from, to Color, t float64) Color {
	return Color{
		R: from.R + (to.R-from.R)*t,
		G: from.G + (to.G-from.G)*t,
		B: from.B + (to.B-from.B)*t,
	}
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		// Degenerate phase still yields so the loop cannot spin
		return time.Millisecond
	}
	return time.Duration(s * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
