package bridge

import (
	"errors"
	"testing"

	"github.com/smazurov/gpiobridge/internal/led"
)

func TestParseCommand_SetColor(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"command":"set_color","params":{"r":1.0,"g":0.5}}`))
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	want := led.Color{R: 1, G: 0.5, B: 0}
	if cmd.Color != want {
		t.Errorf("Expected %+v with omitted channel defaulting to 0, got %+v", want, cmd.Color)
	}
}

func TestParseCommand_PulseDefaults(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"command":"pulse"}`))
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if cmd.OnColor != (led.Color{B: 1}) {
		t.Errorf("Expected default on_color blue, got %+v", cmd.OnColor)
	}
	if cmd.OffColor != (led.Color{}) {
		t.Errorf("Expected default off_color black, got %+v", cmd.OffColor)
	}
	if cmd.FadeIn != 1 || cmd.FadeOut != 1 {
		t.Errorf("Expected default fades of 1s, got %v/%v", cmd.FadeIn, cmd.FadeOut)
	}
}

func TestParseCommand_PulseExplicit(t *testing.T) {
	line := `{"command":"pulse","params":{"on_color":[0,1,0],"off_color":[0.1,0,0],"fade_in":2,"fade_out":0.5}}`
	cmd, err := ParseCommand([]byte(line))
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if cmd.OnColor != (led.Color{G: 1}) {
		t.Errorf("Expected on_color green, got %+v", cmd.OnColor)
	}
	if cmd.OffColor != (led.Color{R: 0.1}) {
		t.Errorf("Expected off_color dim red, got %+v", cmd.OffColor)
	}
	if cmd.FadeIn != 2 || cmd.FadeOut != 0.5 {
		t.Errorf("Expected fades 2/0.5, got %v/%v", cmd.FadeIn, cmd.FadeOut)
	}
}

func TestParseCommand_BlinkDefaults(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"command":"blink","params":{}}`))
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}

	if cmd.Color != (led.Color{R: 1, G: 1}) {
		t.Errorf("Expected default yellow, got %+v", cmd.Color)
	}
	if cmd.OnTime != 0.5 || cmd.OffTime != 0.5 {
		t.Errorf("Expected default times 0.5/0.5, got %v/%v", cmd.OnTime, cmd.OffTime)
	}
}

func TestParseCommand_OffIgnoresParams(t *testing.T) {
	for _, line := range []string{
		`{"command":"off"}`,
		`{"command":"off","params":{"whatever":true}}`,
	} {
		cmd, err := ParseCommand([]byte(line))
		if err != nil {
			t.Fatalf("ParseCommand(%s) failed: %v", line, err)
		}
		if cmd.Name != CmdOff {
			t.Errorf("Expected off command, got %s", cmd.Name)
		}
	}
}

func TestParseCommand_UnknownCommand(t *testing.T) {
	_, err := ParseCommand([]byte(`{"command":"rainbow"}`))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestParseCommand_MalformedLine(t *testing.T) {
	for _, line := range []string{
		``,
		`not json`,
		`{"command":`,
		`{"command":"blink","params":{"color":"red"}}`,
	} {
		if _, err := ParseCommand([]byte(line)); err == nil {
			t.Errorf("Expected error for line %q", line)
		}
	}
}
