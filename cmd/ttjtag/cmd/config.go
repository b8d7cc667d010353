package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ttjtag/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or save the effective settings",
	Long: `Print the settings after the config file and flags are merged. The save
subcommand writes them back to the config file, so flags given once become the
defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective settings to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigSave,
}

func init() {
	configCmd.AddCommand(configSaveCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", configPath)
	fmt.Fprintln(out, string(data))
	return nil
}

func runConfigSave(cmd *cobra.Command, args []string) error {
	if err := config.Save(configPath, settings); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", configPath)
	return nil
}
