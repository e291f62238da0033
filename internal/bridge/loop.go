package bridge

import (
	"bufio"
	"errors"
	"io"
	"log/slog"

	"github.com/smazurov/gpiobridge/internal/led"
	"github.com/smazurov/gpiobridge/internal/metrics"
)

// Loop reads one command per line and dispatches it to the LED controller.
// The loop has a single Listening state: it only ends on end-of-input or an
// unrecoverable read error. Everything else is reported and skipped so a
// single bad command never terminates the long-running process.
type Loop struct {
	ctrl   *led.Controller
	logger *slog.Logger
}

// NewLoop creates a command loop driving ctrl.
func NewLoop(ctrl *led.Controller, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{ctrl: ctrl, logger: logger}
}

// Run processes commands from r until EOF (returns nil) or a read error.
func (l *Loop) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Bytes()

		cmd, err := ParseCommand(line)
		if err != nil {
			if errors.Is(err, ErrUnknownCommand) {
				l.logger.Warn("Unknown command", "error", err)
				metrics.CommandFailed("unknown_command")
			} else {
				l.logger.Warn("Invalid command line", "error", err, "line", string(line))
				metrics.CommandFailed("invalid_json")
			}
			continue
		}

		metrics.CommandReceived(cmd.Name)
		if err := l.dispatch(cmd); err != nil {
			// The command's effect is simply not applied
			l.logger.Warn("Command failed", "command", cmd.Name, "error", err)
			metrics.CommandFailed("execution")
		}
	}

	if err := scanner.Err(); err != nil {
		l.logger.Error("Command stream read failed", "error", err)
		return err
	}

	l.logger.Info("Command stream closed")
	return nil
}

func (l *Loop) dispatch(cmd Command) error {
	switch cmd.Name {
	case CmdSetColor:
		return l.ctrl.SetColor(cmd.Color)
	case CmdPulse:
		return l.ctrl.Pulse(cmd.OnColor, cmd.OffColor, cmd.FadeIn, cmd.FadeOut)
	case CmdBlink:
		return l.ctrl.Blink(cmd.Color, cmd.OnTime, cmd.OffTime)
	case CmdOff:
		return l.ctrl.Off()
	default:
		// ParseCommand only produces known names
		return ErrUnknownCommand
	}
}
