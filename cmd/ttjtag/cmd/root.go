package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ttjtag/internal/config"
)

var (
	// Global flags
	configPath  string
	adapterKind string
	serial      string
	speedHz     int
	logLevel    string
	verbose     bool
	strict      bool
	fixture     string
	inputs      uint8
	bsdlDir     string

	// settings is the file configuration with flags applied, set before any
	// command runs.
	settings *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ttjtag",
	Short: "Boundary-scan tool for the TT JTAG counter",
	Long: `Talk to the Tiny Tapeout JTAG counter through its TAP, either on a
CMSIS-DAP probe or against the built-in cycle model.

Examples:
  ttjtag idcode                                  # Identify the device
  ttjtag sample --inputs 0x13                    # Observe the pins
  ttjtag extest --value 0x5A --fixture loopback  # Drive uo_out from the boundary
  ttjtag netlist --fixture loopback              # Discover board nets`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default is the user config dir)")
	pf.StringVar(&adapterKind, "adapter", config.AdapterSim, "adapter: sim or cmsis-dap")
	pf.StringVar(&serial, "serial", "", "probe serial number")
	pf.IntVar(&speedHz, "speed", 1_000_000, "TCK frequency in Hz")
	pf.StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error, critical, off")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.BoolVar(&strict, "strict", true, "panic on hardware assertion failures in the simulator")
	pf.StringVar(&fixture, "fixture", config.FixtureNone, "simulated board: none or loopback")
	pf.Uint8Var(&inputs, "inputs", 0, "static ui_in value for the simulator")
	pf.StringVar(&bsdlDir, "bsdl-dir", "", "directory with extra BSDL files")
}

// loadSettings reads the config file and applies the flags that were set
// on the command line.
func loadSettings(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = adapterKind
	}
	if flags.Changed("serial") {
		cfg.Serial = serial
	}
	if flags.Changed("speed") {
		cfg.SpeedHz = speedHz
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("fixture") {
		cfg.Fixture = fixture
	}
	if flags.Changed("inputs") {
		cfg.Inputs = inputs
	}
	if flags.Changed("bsdl-dir") {
		cfg.BSDLDir = bsdlDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setLogLevels(cfg.LogLevel); err != nil {
		return err
	}

	configPath = path
	settings = cfg
	mainLog.Debugf("config %s: adapter %s, fixture %s", path, cfg.Adapter, cfg.Fixture)
	return nil
}
