package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ttjtag/pkg/interconnect"
)

var (
	netlistOutput    string
	netlistRepeats   int
	netlistStrength  int
	netlistSymmetric bool
	netlistOnlyPins  string
	netlistTimeout   time.Duration
)

var netlistCmd = &cobra.Command{
	Use:   "netlist",
	Short: "Discover board nets between uo_out and ui_in",
	Long: `Drive each output pin low, high and low again under EXTEST and capture the
inputs. Inputs that follow the driver are connected to it. The result is
written as JSON.

Examples:
  ttjtag netlist --fixture loopback
  ttjtag netlist --repeats 3 --min-strength 2 --symmetric -o nets.json
  ttjtag netlist --only-pins 'UO_OUT[0-3]'`,
	Args: cobra.NoArgs,
	RunE: runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)

	netlistCmd.Flags().StringVarP(&netlistOutput, "output", "o", "",
		"output JSON file path (default stdout)")
	netlistCmd.Flags().IntVar(&netlistRepeats, "repeats", 1,
		"number of toggle cycles per pin")
	netlistCmd.Flags().IntVar(&netlistStrength, "min-strength", 1,
		"cycles an input must follow the driver")
	netlistCmd.Flags().BoolVar(&netlistSymmetric, "symmetric", false,
		"also toggle 1-0-1 with the other outputs high")
	netlistCmd.Flags().StringVar(&netlistOnlyPins, "only-pins", "",
		"only drive output pins matching this regex")
	netlistCmd.Flags().DurationVar(&netlistTimeout, "timeout", 0,
		"give up after this long (0 = no timeout)")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	cfg := interconnect.DefaultConfig()
	cfg.RepeatsPerPin = netlistRepeats
	cfg.MinToggleStrength = netlistStrength
	cfg.RequireSymmetricToggle = netlistSymmetric
	cfg.OnlyPinPattern = netlistOnlyPins
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctl, closer, err := controller(settings)
	if err != nil {
		return err
	}
	defer closer()

	ctx := cmd.Context()
	if netlistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, netlistTimeout)
		defer cancel()
	}

	progressCh := make(chan interconnect.Progress, 10)
	done := make(chan struct{})
	go func() {
		displayProgress(cmd.ErrOrStderr(), progressCh)
		close(done)
	}()

	start := time.Now()
	nl, err := interconnect.DiscoverNetlist(ctx, ctl, cfg, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return fmt.Errorf("netlist discovery failed: %w", err)
	}
	mainLog.Infof("%d nets in %s", nl.NetCount(), time.Since(start).Round(time.Millisecond))

	data, err := nl.ExportJSON(ctl.Target().Name())
	if err != nil {
		return err
	}
	if netlistOutput == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(netlistOutput, data, 0o644); err != nil {
		return fmt.Errorf("write netlist: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d nets saved to %s\n", nl.NetCount(), netlistOutput)
	return nil
}

// displayProgress draws a progress bar until the channel closes.
func displayProgress(w io.Writer, progressCh <-chan interconnect.Progress) {
	for p := range progressCh {
		switch p.Phase {
		case "init":
			fmt.Fprintf(w, "Scanning %d output pin(s)...\n", p.Total)
		case "finalizing":
			fmt.Fprintf(w, "\r%-70s\rFinalizing netlist...\n", "")
		default:
			percent := 0
			if p.Total > 0 {
				percent = p.Index * 100 / p.Total
			}
			const barWidth = 32
			filled := percent * barWidth / 100
			bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
			fmt.Fprintf(w, "\r[%s] %3d%% | %-8s | Nets: %d", bar, percent, p.Driver, p.NetsFound)
		}
	}
}
