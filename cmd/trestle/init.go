// Init command for the trestle CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trestle/internal/paths"
	"github.com/mesh-intelligence/trestle/internal/session"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the trestle config directory with default files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		if err := ensureConfigDir(configDir); err != nil {
			return err
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return err
		}
		if err := ensureDefaultPresetFile(configDir); err != nil {
			return err
		}
		cacheDir, err := paths.ResolveCacheDir()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Trestle initialized")
		fmt.Fprintln(out, "  config:", configDir)
		fmt.Fprintln(out, "  cache: ", cacheDir)
		return nil
	},
}

// ensureDefaultPresetFile creates a header-only presets.csv if the file
// does not exist in the config directory.
func ensureDefaultPresetFile(configDir string) error {
	path := filepath.Join(configDir, presetsFileName)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat preset file: %w", err)
	}
	return os.WriteFile(path, []byte(session.DefaultPresetFileContent), 0o644)
}
