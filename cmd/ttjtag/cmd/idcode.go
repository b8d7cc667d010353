package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ttjtag/pkg/idcode"
	"github.com/OpenTraceLab/ttjtag/pkg/session"
)

var idcodeCmd = &cobra.Command{
	Use:   "idcode",
	Short: "Read and decode the device IDCODE",
	Long: `Reset the TAP, shift the 32-bit identification register out and decode
its fields. The BSDL description matching the IDCODE is reported when one is
known.`,
	Args: cobra.NoArgs,
	RunE: runIDCode,
}

func init() {
	rootCmd.AddCommand(idcodeCmd)
}

func runIDCode(cmd *cobra.Command, args []string) error {
	conn, err := connect(settings)
	if conn == nil {
		return err
	}
	defer conn.close()
	if err != nil && !session.IsNotFound(err) {
		return err
	}

	out := cmd.OutOrStdout()
	t := conn.target
	fmt.Fprintf(out, "IDCODE:           0x%08X\n", t.IDCode)
	fmt.Fprintf(out, "Version:          %d\n", t.Part.Version)
	fmt.Fprintf(out, "Part Number:      0x%04X\n", t.Part.PartNumber)
	mfr := fmt.Sprintf("0x%03X", t.Part.ManufacturerCode)
	if m, ok := idcode.LookupManufacturer(t.Part.ManufacturerCode); ok {
		mfr = fmt.Sprintf("%s (%s)", m.Name, mfr)
	}
	fmt.Fprintf(out, "Manufacturer:     %s\n", mfr)
	if t.Info.Name != "" {
		fmt.Fprintf(out, "Device:           %s\n", t.Info.Name)
	}
	if t.Desc == nil {
		fmt.Fprintln(out, "BSDL:             not found")
		return nil
	}
	fmt.Fprintf(out, "BSDL Entity:      %s\n", t.Desc.Entity)
	fmt.Fprintf(out, "IR Length:        %d bits\n", t.IRLength())
	fmt.Fprintf(out, "Boundary Length:  %d bits\n", t.Desc.Info.BoundaryLength)
	return nil
}
