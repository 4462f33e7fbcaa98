// Config loading for the trestle CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/trestle/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	presetsFileName = "presets.csv"

	// Config keys, matching the types.Config yaml tags.
	cfgKeyCapacity  = "history_capacity"
	cfgKeyStrict    = "strict_import"
	cfgKeyIgnore    = "ignore_empty_rows"
	cfgKeyDelimiter = "line_delimiter"
	cfgKeyViewer    = "viewer"
	cfgKeyPresets   = "preset_file"
	cfgKeyLogLevel  = "log_level"

	envPrefix = "TRESTLE"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# Trestle configuration

# Undo snapshots kept per page.
history_capacity: 16

# Reject imported records whose width differs from the first record.
strict_import: false

# Skip blank lines on import instead of keeping them as empty rows.
ignore_empty_rows: true

# Record separator on import. Empty means newline.
# line_delimiter: ""

# Shell command the print output is piped through, e.g. "column -t -s,".
# viewer: ""

# Extra limiter presets file (name,type,default,variants,pattern).
# Default: presets.csv next to this file.
# preset_file: ""

# One of: panic, fatal, error, warn, info, debug, trace.
log_level: warn
`

// loadConfig reads config.yaml from the config directory using Viper,
// creating the directory and a default config.yaml on first run. A missing
// config.yaml is not an error. TRESTLE_* environment variables override
// file values key by key.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	defaults := types.DefaultConfig()
	v.SetDefault(cfgKeyCapacity, defaults.HistoryCapacity)
	v.SetDefault(cfgKeyStrict, defaults.StrictImport)
	v.SetDefault(cfgKeyIgnore, defaults.IgnoreEmptyRows)
	v.SetDefault(cfgKeyDelimiter, defaults.LineDelimiter)
	v.SetDefault(cfgKeyViewer, defaults.Viewer)
	v.SetDefault(cfgKeyPresets, defaults.PresetFile)
	v.SetDefault(cfgKeyLogLevel, defaults.LogLevel)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{
		cfgKeyCapacity, cfgKeyStrict, cfgKeyIgnore, cfgKeyDelimiter,
		cfgKeyViewer, cfgKeyPresets, cfgKeyLogLevel,
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// configFromViper builds the editor configuration from resolved viper
// values. An unset preset file falls back to presets.csv in the config
// directory; the session tolerates it not existing.
func configFromViper(v *viper.Viper, configDir string) types.Config {
	c := types.Config{
		HistoryCapacity: v.GetInt(cfgKeyCapacity),
		StrictImport:    v.GetBool(cfgKeyStrict),
		IgnoreEmptyRows: v.GetBool(cfgKeyIgnore),
		LineDelimiter:   v.GetString(cfgKeyDelimiter),
		Viewer:          v.GetString(cfgKeyViewer),
		PresetFile:      v.GetString(cfgKeyPresets),
		LogLevel:        v.GetString(cfgKeyLogLevel),
	}
	if c.PresetFile == "" {
		c.PresetFile = filepath.Join(configDir, presetsFileName)
	}
	return c
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
