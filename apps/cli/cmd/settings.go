package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/gpapi/packages/core/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or create the settings file",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings (file, environment and flags merged)",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, false)
		if err != nil {
			return err
		}
		return a.out.FormatSettings(a.cfg)
	},
}

var forceSettingsInit bool

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with default values",
	Long: `Write a settings file with default values.

Without --config the file is .gpapi.json in the current directory.

Examples:
  gpapi settings init
  gpapi settings init --config ./project/.gpapi.json --force`,
	Args: exactArgs(0),
	RunE: settingsInitCommand,
}

func init() {
	settingsInitCmd.Flags().BoolVarP(&forceSettingsInit, "force", "f", false, "Overwrite an existing file")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
}

func settingsInitCommand(cmd *cobra.Command, args []string) error {
	path := configFlag
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = config.Path(cwd)
	}

	if !forceSettingsInit {
		if _, err := os.Stat(path); err == nil {
			return &usageError{fmt.Errorf("file already exists: %s (use --force to overwrite)", path)}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
