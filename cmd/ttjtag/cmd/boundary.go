package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ttjtag/pkg/bsr"
	"github.com/OpenTraceLab/ttjtag/pkg/device"
)

var (
	extestValue   uint8
	clampValue    uint8
	watchSamples  int
	watchInterval time.Duration
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Capture the pins with SAMPLE while the core runs",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

var extestCmd = &cobra.Command{
	Use:   "extest",
	Short: "Drive uo_out from the boundary register",
	Long: `Preload the output cells with --value, switch to EXTEST and capture the
inputs. With the loopback fixture the captured ui_in equals the driven value.`,
	Args: cobra.NoArgs,
	RunE: runExtest,
}

var intestCmd = &cobra.Command{
	Use:   "intest",
	Short: "Isolate the core and apply --inputs to it",
	Long: `Load INTEST, shift --inputs into the input cells and capture what the
core drives in response. The pads stay at zero while INTEST is active.`,
	Args: cobra.NoArgs,
	RunE: runIntest,
}

var clampCmd = &cobra.Command{
	Use:   "clamp",
	Short: "Hold uo_out at --value with BYPASS selected",
	Args:  cobra.NoArgs,
	RunE:  runClamp,
}

var bypassCmd = &cobra.Command{
	Use:   "bypass",
	Short: "Select BYPASS and check the one-bit delay",
	Args:  cobra.NoArgs,
	RunE:  runBypass,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sample the pins repeatedly",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	extestCmd.Flags().Uint8Var(&extestValue, "value", 0, "uo_out value to drive")
	clampCmd.Flags().Uint8Var(&clampValue, "value", 0, "uo_out value to hold")
	watchCmd.Flags().IntVar(&watchSamples, "samples", 16, "number of samples")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 100*time.Millisecond, "delay between samples")

	rootCmd.AddCommand(sampleCmd, extestCmd, intestCmd, clampCmd, bypassCmd, watchCmd)
}

func printSnapshot(w io.Writer, snap bsr.Snapshot) {
	ui := snap.InputBus("UI_IN", device.BusWidth)
	uo := snap.OutputBus("UO_OUT", device.BusWidth)
	digit := "-"
	if d, ok := device.DecodeSevenSegment(uint8(uo)); ok {
		digit = fmt.Sprintf("%X", d)
	}
	fmt.Fprintf(w, "ui_in:  0x%02X\n", ui)
	fmt.Fprintf(w, "uo_out: 0x%02X\n", uo)
	fmt.Fprintf(w, "digit:  %s\n", digit)
}

func runSample(cmd *cobra.Command, args []string) error {
	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	snap, err := ctl.Sample()
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func runExtest(cmd *cobra.Command, args []string) error {
	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	if err := ctl.Preload(bsr.BusValues("UO_OUT", device.BusWidth, uint64(extestValue))); err != nil {
		return err
	}
	if _, err := ctl.Extest(); err != nil {
		return err
	}
	snap, err := ctl.CaptureAll()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "EXTEST driving uo_out = 0x%02X\n", extestValue)
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func runIntest(cmd *cobra.Command, args []string) error {
	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	stimulus := uint64(settings.Inputs)
	snap, err := ctl.Intest(bsr.BusValues("UI_IN", device.BusWidth, stimulus))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "INTEST stimulus ui_in = 0x%02X\n", stimulus)
	printSnapshot(cmd.OutOrStdout(), snap)
	return nil
}

func runClamp(cmd *cobra.Command, args []string) error {
	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	if err := ctl.Preload(bsr.BusValues("UO_OUT", device.BusWidth, uint64(clampValue))); err != nil {
		return err
	}
	if err := ctl.Clamp(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "CLAMP holding uo_out = 0x%02X\n", clampValue)
	return nil
}

func runBypass(cmd *cobra.Command, args []string) error {
	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	if err := ctl.Bypass(); err != nil {
		return err
	}
	const pattern = 0xA5C3_0F96
	got, err := ctl.Session().ScanDR(pattern, 32)
	if err != nil {
		return err
	}
	want := uint64(pattern<<1) & 0xFFFF_FFFF
	if got != want {
		return fmt.Errorf("bypass: shifted 0x%08X, got 0x%08X, want 0x%08X", uint64(pattern), got, want)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "BYPASS active: 1-bit register between TDI and TDO")
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchSamples <= 0 {
		return fmt.Errorf("--samples must be positive, got %d", watchSamples)
	}
	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	out := cmd.OutOrStdout()
	for i := 0; i < watchSamples; i++ {
		if i > 0 && watchInterval > 0 {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(watchInterval):
			}
		}
		snap, err := ctl.Sample()
		if err != nil {
			return err
		}
		uo := uint8(snap.OutputBus("UO_OUT", device.BusWidth))
		digit := "-"
		if d, ok := device.DecodeSevenSegment(uo); ok {
			digit = fmt.Sprintf("%X", d)
		}
		fmt.Fprintf(out, "%3d  ui_in=0x%02X  uo_out=0x%02X  digit=%s\n", i, snap.InputBus("UI_IN", device.BusWidth), uo, digit)
	}
	return nil
}
