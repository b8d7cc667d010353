package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ttjtag/pkg/bsdl"
	"github.com/OpenTraceLab/ttjtag/pkg/device"
)

var (
	showBoundary bool
	showPins     bool
)

var bsdlCmd = &cobra.Command{
	Use:   "bsdl [bsdl-file]",
	Short: "Show a BSDL description",
	Long: `Parse a BSDL file and display its identification, instructions and
boundary register. Without a file the built-in description of the counter is
shown.

Examples:
  ttjtag bsdl
  ttjtag bsdl --boundary --pins device.bsd`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBSDL,
}

func init() {
	rootCmd.AddCommand(bsdlCmd)

	bsdlCmd.Flags().BoolVarP(&showBoundary, "boundary", "b", false,
		"show boundary scan cells")
	bsdlCmd.Flags().BoolVarP(&showPins, "pins", "p", false,
		"show port to cell mapping")
}

func runBSDL(cmd *cobra.Command, args []string) error {
	var (
		desc *bsdl.Description
		err  error
	)
	if len(args) == 1 {
		desc, err = bsdl.LoadFile(args[0])
	} else {
		desc, err = bsdl.Load(device.Entity, device.BSDL)
	}
	if err != nil {
		return fmt.Errorf("failed to parse BSDL: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Entity: %s\n\n", desc.Entity)

	fmt.Fprintf(out, "Device Information:\n")
	fmt.Fprintf(out, "  IR Length:       %d bits\n", desc.Info.InstructionLength)
	if desc.Info.InstructionCapture != "" {
		fmt.Fprintf(out, "  IR Capture:      %s\n", desc.Info.InstructionCapture)
	}
	fmt.Fprintf(out, "  Boundary Length: %d bits\n", desc.Info.BoundaryLength)
	if value, mask, ok := desc.IDCode(); ok {
		fmt.Fprintf(out, "  IDCODE:          0x%08X", value)
		if mask != 0xFFFFFFFF {
			fmt.Fprintf(out, " (mask: 0x%08X)", mask)
		}
		fmt.Fprintln(out)
	}
	if desc.TAP.MaxFreq > 0 {
		fmt.Fprintf(out, "  Max TCK:         %.0f Hz\n", desc.TAP.MaxFreq)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Instructions: %d\n", len(desc.Instructions))
	for _, in := range desc.Instructions {
		reg := desc.Access[strings.ToUpper(in.Name)]
		if reg == "" {
			reg = "-"
		}
		fmt.Fprintf(out, "  %-10s %s  %s\n", in.Name, in.Opcode, reg)
	}

	if showBoundary {
		fmt.Fprintf(out, "\nBoundary Cells: %d\n", len(desc.Cells))
		for _, c := range desc.Cells {
			fmt.Fprintf(out, "  %3d  %-6s %-10s %-9s safe=%s\n", c.Number, c.CellType, c.Port, c.Function, c.Safe)
		}
	}

	if showPins && desc.Pins != nil {
		fmt.Fprintln(out, "\nPin Mappings:")
		for _, p := range desc.Pins.Inputs() {
			fmt.Fprintf(out, "  %-10s -> input cell %d\n", p, desc.Pins.InputCell[p])
		}
		for _, p := range desc.Pins.Outputs() {
			fmt.Fprintf(out, "  %-10s -> output cell %d\n", p, desc.Pins.OutputCell[p])
		}
	}
	return nil
}
