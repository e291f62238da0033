package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/gpiobridge/internal/gpio"
	"github.com/smazurov/gpiobridge/internal/led"
)

// SelftestCmd cycles the LED through each channel so an operator can
// verify the wiring without a host process attached.
var SelftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Cycle the LED through each color to verify wiring",
	Long:  `Drives the red, green and blue channels in turn, then white, then off. Use --mock to exercise the cycle without GPIO hardware.`,
	Run: func(cmd *cobra.Command, args []string) {
		mock, _ := cmd.Flags().GetBool("mock")
		hold, _ := cmd.Flags().GetDuration("hold")

		var dev gpio.Device
		if mock {
			dev = gpio.NewMock(nil)
		} else {
			d, err := gpio.Open(gpio.DefaultConfig(), nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "GPIO init failed: %v\n", err)
				os.Exit(1)
			}
			dev = d
		}
		defer dev.Close()

		if err := dev.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "GPIO start failed: %v\n", err)
			os.Exit(1)
		}

		steps := []struct {
			name  string
			color led.Color
		}{
			{"red", led.Color{R: 1}},
			{"green", led.Color{G: 1}},
			{"blue", led.Color{B: 1}},
			{"white", led.Color{R: 1, G: 1, B: 1}},
			{"off", led.Color{}},
		}

		for _, step := range steps {
			fmt.Fprintf(os.Stderr, "selftest: %s\n", step.name)
			if err := dev.SetRGB(step.color.R, step.color.G, step.color.B); err != nil {
				fmt.Fprintf(os.Stderr, "LED write failed: %v\n", err)
				os.Exit(1)
			}
			time.Sleep(hold)
		}
	},
}

func init() {
	SelftestCmd.Flags().Bool("mock", false, "Run against an in-memory GPIO device")
	SelftestCmd.Flags().Duration("hold", time.Second, "How long to hold each color")
}
