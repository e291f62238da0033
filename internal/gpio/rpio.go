package gpio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

const (
	// pwmPeriod is the software PWM cycle; 100 Hz is flicker-free for an
	// indicator LED without burning CPU on a small board.
	pwmPeriod = 10 * time.Millisecond

	// pollInterval samples the button often enough that the debounce
	// window, not the sampling rate, bounds transition latency.
	pollInterval = 5 * time.Millisecond
)

// rpioDevice drives the LED and button through the BCM2835 GPIO registers.
type rpioDevice struct {
	cfg    Config
	logger *slog.Logger

	red   pwmChannel
	green pwmChannel
	blue  pwmChannel

	button    rpio.Pin
	onPress   func()
	onRelease func()

	deb   *debouncer
	debMu sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// pwmChannel is one software-PWM output. The duty cycle is stored as
// float64 bits so the PWM goroutine can read it without locking.
type pwmChannel struct {
	pin  rpio.Pin
	duty *atomic.Uint64
}

func (c pwmChannel) set(v float64) {
	c.duty.Store(math.Float64bits(clamp(v)))
}

func (c pwmChannel) get() float64 {
	return math.Float64frombits(c.duty.Load())
}

// Open memory-maps the GPIO registers and configures the pins. Failure here
// is fatal to the process: the caller reports it and exits non-zero.
func Open(cfg Config, logger *slog.Logger) (Device, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("opening GPIO memory range: %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &rpioDevice{
		cfg:    cfg,
		logger: logger,
		red:    pwmChannel{pin: rpio.Pin(cfg.RedPin), duty: &atomic.Uint64{}},
		green:  pwmChannel{pin: rpio.Pin(cfg.GreenPin), duty: &atomic.Uint64{}},
		blue:   pwmChannel{pin: rpio.Pin(cfg.BluePin), duty: &atomic.Uint64{}},
		button: rpio.Pin(cfg.ButtonPin),
		deb:    newDebouncer(cfg.Debounce),
		ctx:    ctx,
		cancel: cancel,
	}

	// Active-low LED: high level is off
	for _, ch := range []pwmChannel{d.red, d.green, d.blue} {
		ch.pin.Output()
		ch.pin.High()
	}

	// Button idles high and reads low while held down
	d.button.Input()
	d.button.PullUp()

	logger.Info("GPIO device opened",
		"red", cfg.RedPin, "green", cfg.GreenPin, "blue", cfg.BluePin,
		"button", cfg.ButtonPin, "debounce", cfg.Debounce)
	return d, nil
}

// SetRGB writes the three channel intensities. Out-of-range values are
// clamped to the duty-cycle boundaries.
func (d *rpioDevice) SetRGB(r, g, b float64) error {
	d.red.set(r)
	d.green.set(g)
	d.blue.set(b)
	return nil
}

// OnPress registers the press handler. Must be called before Start.
func (d *rpioDevice) OnPress(fn func()) { d.onPress = fn }

// OnRelease registers the release handler. Must be called before Start.
func (d *rpioDevice) OnRelease(fn func()) { d.onRelease = fn }

// SetDebounce changes the debounce interval at runtime.
func (d *rpioDevice) SetDebounce(interval time.Duration) {
	if interval <= 0 {
		return
	}
	d.debMu.Lock()
	d.deb.setInterval(interval)
	d.debMu.Unlock()
	d.logger.Info("Button debounce updated", "debounce", interval)
}

// Start launches the PWM goroutines and the button watcher.
func (d *rpioDevice) Start() error {
	if d.started {
		return nil
	}
	d.started = true

	for _, ch := range []pwmChannel{d.red, d.green, d.blue} {
		d.wg.Add(1)
		go d.runPWM(ch)
	}

	d.wg.Add(1)
	go d.watchButton()
	return nil
}

// runPWM drives one channel. Duty 0 and 1 degenerate to steady levels so an
// idle or fully-lit channel causes no switching at all.
func (d *rpioDevice) runPWM(ch pwmChannel) {
	defer d.wg.Done()
	defer ch.pin.High()

	for d.ctx.Err() == nil {
		duty := ch.get()
		switch {
		case duty <= 0:
			ch.pin.High()
			sleepCtx(d.ctx, pwmPeriod)
		case duty >= 1:
			ch.pin.Low()
			sleepCtx(d.ctx, pwmPeriod)
		default:
			ch.pin.Low()
			sleepCtx(d.ctx, time.Duration(duty*float64(pwmPeriod)))
			ch.pin.High()
			sleepCtx(d.ctx, time.Duration((1-duty)*float64(pwmPeriod)))
		}
	}
}

// watchButton samples the input pin and reports debounced transitions.
func (d *rpioDevice) watchButton() {
	defer d.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			pressed := d.button.Read() == rpio.Low

			d.debMu.Lock()
			changed := d.deb.observe(pressed, time.Now())
			d.debMu.Unlock()

			if !changed {
				continue
			}
			if pressed {
				if d.onPress != nil {
					d.onPress()
				}
			} else if d.onRelease != nil {
				d.onRelease()
			}
		}
	}
}

// Close stops the background goroutines, turns the LED off and unmaps the
// GPIO registers.
func (d *rpioDevice) Close() error {
	d.cancel()
	d.wg.Wait()

	for _, ch := range []pwmChannel{d.red, d.green, d.blue} {
		ch.pin.High()
	}

	rpio.Close()
	d.logger.Info("GPIO device closed")
	return nil
}

// sleepCtx sleeps for the given duration or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
