// Package bridge implements the line-delimited JSON protocol between the
// host process and the LED/button hardware: commands in on one stream,
// classified button events out on another.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smazurov/gpiobridge/internal/led"
)

// Command names accepted on the input stream.
const (
	CmdSetColor = "set_color"
	CmdPulse    = "pulse"
	CmdBlink    = "blink"
	CmdOff      = "off"
)

// ErrUnknownCommand is returned for a well-formed line whose command name
// is not recognized.
var ErrUnknownCommand = errors.New("unknown command")

// Command is the parsed, defaulted form of one input line. Name selects
// which of the parameter groups is meaningful.
type Command struct {
	Name string

	// set_color and blink
	Color led.Color

	// pulse
	OnColor  led.Color
	OffColor led.Color
	FadeIn   float64
	FadeOut  float64

	// blink
	OnTime  float64
	OffTime float64
}

// rawCommand mirrors the wire shape; params stays raw until the command
// name selects its typed structure.
type rawCommand struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

// Per-command parameter structures. Pointer fields distinguish "omitted"
// from zero so documented defaults apply only to absent fields.
type setColorParams struct {
	R *float64 `json:"r"`
	G *float64 `json:"g"`
	B *float64 `json:"b"`
}

type pulseParams struct {
	OnColor  *[3]float64 `json:"on_color"`
	OffColor *[3]float64 `json:"off_color"`
	FadeIn   *float64    `json:"fade_in"`
	FadeOut  *float64    `json:"fade_out"`
}

type blinkParams struct {
	Color   *[3]float64 `json:"color"`
	OnTime  *float64    `json:"on_time"`
	OffTime *float64    `json:"off_time"`
}

// ParseCommand parses one input line into a defaulted Command.
func ParseCommand(line []byte) (Command, error) {
	var raw rawCommand
	if err := json.Unmarshal(line, &raw); err != nil {
		return Command{}, fmt.Errorf("invalid JSON: %w", err)
	}

	switch raw.Command {
	case CmdSetColor:
		return parseSetColor(raw.Params)
	case CmdPulse:
		return parsePulse(raw.Params)
	case CmdBlink:
		return parseBlink(raw.Params)
	case CmdOff:
		// off takes no parameters; extra ones are ignored
		return Command{Name: CmdOff}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, raw.Command)
	}
}

func parseSetColor(params json.RawMessage) (Command, error) {
	var p setColorParams
	if err := unmarshalParams(params, &p); err != nil {
		return Command{}, err
	}
	return Command{
		Name: CmdSetColor,
		Color: led.Color{
			R: floatOr(p.R, 0),
			G: floatOr(p.G, 0),
			B: floatOr(p.B, 0),
		},
	}, nil
}

func parsePulse(params json.RawMessage) (Command, error) {
	var p pulseParams
	if err := unmarshalParams(params, &p); err != nil {
		return Command{}, err
	}
	return Command{
		Name:     CmdPulse,
		OnColor:  colorOr(p.OnColor, led.Color{B: 1}),
		OffColor: colorOr(p.OffColor, led.Color{}),
		FadeIn:   floatOr(p.FadeIn, 1),
		FadeOut:  floatOr(p.FadeOut, 1),
	}, nil
}

func parseBlink(params json.RawMessage) (Command, error) {
	var p blinkParams
	if err := unmarshalParams(params, &p); err != nil {
		return Command{}, err
	}
	return Command{
		Name:    CmdBlink,
		Color:   colorOr(p.Color, led.Color{R: 1, G: 1}),
		OnTime:  floatOr(p.OnTime, 0.5),
		OffTime: floatOr(p.OffTime, 0.5),
	}, nil
}

// unmarshalParams decodes the params object; a missing params field means
// all defaults apply.
func unmarshalParams(params json.RawMessage, into any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, into); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func colorOr(v *[3]float64, def led.Color) led.Color {
	if v == nil {
		return def
	}
	return led.Color{R: v[0], G: v[1], B: v[2]}
}
