package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/gpiobridge/cmd"
	"github.com/smazurov/gpiobridge/internal/bridge"
	"github.com/smazurov/gpiobridge/internal/button"
	"github.com/smazurov/gpiobridge/internal/config"
	"github.com/smazurov/gpiobridge/internal/events"
	"github.com/smazurov/gpiobridge/internal/gpio"
	"github.com/smazurov/gpiobridge/internal/led"
	"github.com/smazurov/gpiobridge/internal/logging"
	"github.com/smazurov/gpiobridge/internal/metrics"
	"github.com/smazurov/gpiobridge/internal/metrics/exporters"
	"github.com/smazurov/gpiobridge/internal/nats"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// GPIO settings
	RedPin     int  `help:"BCM pin for the red LED channel" default:"17" toml:"gpio.red_pin" env:"GPIO_RED_PIN"`
	GreenPin   int  `help:"BCM pin for the green LED channel" default:"27" toml:"gpio.green_pin" env:"GPIO_GREEN_PIN"`
	BluePin    int  `help:"BCM pin for the blue LED channel" default:"24" toml:"gpio.blue_pin" env:"GPIO_BLUE_PIN"`
	ButtonPin  int  `help:"BCM pin for the button" default:"26" toml:"gpio.button_pin" env:"GPIO_BUTTON_PIN"`
	DebounceMs int  `help:"Button debounce interval in milliseconds" default:"50" toml:"gpio.debounce_ms" env:"GPIO_DEBOUNCE_MS"`
	Mock       bool `help:"Use an in-memory GPIO device instead of hardware" default:"false" toml:"gpio.mock" env:"GPIO_MOCK"`

	// Button settings
	LongPressMs int `help:"Hold duration boundary for a long press, in milliseconds" default:"2000" toml:"button.long_press_ms" env:"BUTTON_LONG_PRESS_MS"`

	// Metrics settings
	MetricsEnabled bool   `help:"Expose Prometheus metrics over HTTP" default:"false" toml:"metrics.enabled" env:"METRICS_ENABLED"`
	MetricsPort    string `help:"Metrics listen address" default:":9091" toml:"metrics.port" env:"METRICS_PORT"`

	// NATS telemetry settings
	NATSEnabled bool   `help:"Mirror events to a NATS server" default:"false" toml:"nats.enabled" env:"NATS_ENABLED"`
	NATSURL     string `help:"NATS server URL" default:"nats://localhost:4222" toml:"nats.url" env:"NATS_URL"`
	NodeID      string `help:"Node identifier used in NATS subjects" default:"default" toml:"nats.node_id" env:"NATS_NODE_ID"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingGPIO   string `help:"GPIO logging level" default:"info" toml:"logging.gpio" env:"LOGGING_GPIO"`
	LoggingLED    string `help:"LED logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingButton string `help:"Button logging level" default:"info" toml:"logging.button" env:"LOGGING_BUTTON"`
	LoggingBridge string `help:"Bridge protocol logging level" default:"info" toml:"logging.bridge" env:"LOGGING_BRIDGE"`
	LoggingNATS   string `help:"NATS mirror logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system. Diagnostics go to stderr; stdout is
		// reserved for the event protocol.
		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"gpio":   opts.LoggingGPIO,
				"led":    opts.LoggingLED,
				"button": opts.LoggingButton,
				"bridge": opts.LoggingBridge,
				"nats":   opts.LoggingNATS,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Open the GPIO device
		gpioConfig := gpio.Config{
			RedPin:    opts.RedPin,
			GreenPin:  opts.GreenPin,
			BluePin:   opts.BluePin,
			ButtonPin: opts.ButtonPin,
			Debounce:  time.Duration(opts.DebounceMs) * time.Millisecond,
		}

		var device gpio.Device
		if opts.Mock {
			logger.Info("Using mock GPIO device")
			device = gpio.NewMock(logging.GetLogger("gpio"))
		} else {
			d, err := gpio.Open(gpioConfig, logging.GetLogger("gpio"))
			if err != nil {
				logger.Error("Failed to open GPIO", "error", err)
				os.Exit(1)
			}
			device = d
		}

		// LED controller and button timer
		ledController := led.NewController(device, eventBus, logging.GetLogger("led"))
		buttonTimer := button.NewTimer(eventBus, logging.GetLogger("button"),
			button.WithThreshold(time.Duration(opts.LongPressMs)*time.Millisecond))
		device.OnPress(buttonTimer.Press)
		device.OnRelease(buttonTimer.Release)

		// Event emitter owns stdout
		emitter := bridge.NewEmitter(os.Stdout, logging.GetLogger("bridge"))
		unsubEmitter := emitter.Attach(eventBus)

		// Metrics observe the bus regardless of the HTTP exporter
		unsubMetrics := metrics.Observe(eventBus)

		var metricsServer *http.Server
		if opts.MetricsEnabled {
			mux := http.NewServeMux()
			mux.Handle("/metrics", exporters.HTTPHandler())
			mux.Handle("/logs", logging.HTTPHandler(logging.GetBuffer()))
			metricsServer = &http.Server{Addr: opts.MetricsPort, Handler: mux}
		}

		// Optional NATS telemetry mirror
		var mirror *nats.Mirror
		if opts.NATSEnabled {
			mirror = nats.NewMirror(opts.NATSURL, opts.NodeID, logging.GetLogger("nats"))
			mirror.Attach(eventBus)
			// Connect errors are non-fatal; the mirror reconnects in the
			// background and the stdout protocol is unaffected
			_ = mirror.Connect()
		}

		// Watch the config file for logging and debounce changes
		watcher := config.NewConfigWatcher(opts.Config, loadRuntimeConfig, logging.GetLogger("main"))
		watcher.OnReload(func(rc runtimeConfig) {
			logging.Initialize(rc.Logging)
			if rc.DebounceMs > 0 {
				device.SetDebounce(time.Duration(rc.DebounceMs) * time.Millisecond)
			}
		})

		loop := bridge.NewLoop(ledController, logging.GetLogger("bridge"))

		// Teardown runs from whichever exit path comes first: stdin EOF
		// inside OnStart, or a signal via OnStop. Either way the LED must
		// go dark and the GPIO mapping must be released.
		stop := &shutdowner{fn: func() {
			logger.Info("Shutting down")

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}

			if metricsServer != nil {
				_ = metricsServer.Close()
			}

			if mirror != nil {
				mirror.Close()
			}

			unsubMetrics()
			unsubEmitter()

			ledController.Close()
			if closeErr := device.Close(); closeErr != nil {
				logger.Warn("Error closing GPIO device", "error", closeErr)
			}
		}}

		hooks.OnStart(func() {
			if err := device.Start(); err != nil {
				logger.Error("Failed to start GPIO device", "error", err)
				os.Exit(1)
			}

			// Startup indicator: dim white-green until the host changes it
			if err := ledController.SetColor(led.Ready); err != nil {
				logger.Error("Failed to set ready color", "error", err)
				os.Exit(1)
			}

			if metricsServer != nil {
				go func() {
					logger.Info("Starting metrics server", "addr", metricsServer.Addr)
					if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("Metrics server failed", "error", err)
					}
				}()
			}

			if err := watcher.Start(); err != nil {
				logger.Warn("Config watcher not started", "error", err)
			}

			logger.Info("Listening for commands",
				"red_pin", opts.RedPin,
				"green_pin", opts.GreenPin,
				"blue_pin", opts.BluePin,
				"button_pin", opts.ButtonPin)

			runErr := loop.Run(os.Stdin)

			// On clean EOF the stop hook never fires; release everything here
			stop.run()

			if runErr != nil {
				logger.Error("Command loop failed", "error", runErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			stop.run()
		})
	})

	// Add selftest command
	cli.Root().AddCommand(cmd.SelftestCmd)

	// Run the CLI
	cli.Run()
}

// shutdowner runs a teardown function exactly once, no matter how many exit
// paths reach it.
type shutdowner struct {
	once sync.Once
	fn   func()
}

func (s *shutdowner) run() {
	s.once.Do(s.fn)
}

// runtimeConfig is the subset of the config file that can change while the
// daemon is running.
type runtimeConfig struct {
	Logging    logging.Config
	DebounceMs int
}

// loadRuntimeConfig reads the reloadable settings from the config file.
func loadRuntimeConfig(path string) (runtimeConfig, error) {
	rc := runtimeConfig{Logging: config.LoadLoggingConfig(path)}

	if _, err := os.Stat(path); err != nil {
		return rc, fmt.Errorf("config file not readable: %w", err)
	}

	rc.DebounceMs = config.LoadDebounceMs(path)
	return rc, nil
}
