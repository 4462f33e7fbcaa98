package types

import (
	"errors"
	"unicode/utf8"
)

// Config holds the editor settings the CLI resolves from flags, the config
// file, and the environment. The core never reads ambient state; everything
// it needs arrives through this struct.
type Config struct {
	HistoryCapacity int    `json:"history_capacity" yaml:"history_capacity"` // snapshot stack bound; 0 means default
	StrictImport    bool   `json:"strict_import" yaml:"strict_import"`       // reject records with the wrong width
	IgnoreEmptyRows bool   `json:"ignore_empty_rows" yaml:"ignore_empty_rows"`
	LineDelimiter   string `json:"line_delimiter" yaml:"line_delimiter"` // record separator on import; empty means newline
	Viewer          string `json:"viewer" yaml:"viewer"`                 // shell command the print command pipes through
	PresetFile      string `json:"preset_file" yaml:"preset_file"`       // extra limiter presets; empty means config dir default
	LogLevel        string `json:"log_level" yaml:"log_level"`
}

// Config validation errors.
var (
	ErrCapacityNegative     = errors.New("history capacity must not be negative")
	ErrLineDelimiterInvalid = errors.New("line delimiter must be a single character")
	ErrLogLevelUnknown      = errors.New("unknown log level")
)

// knownLogLevels lists the levels Validate accepts.
var knownLogLevels = map[string]bool{
	"panic":   true,
	"fatal":   true,
	"error":   true,
	"warn":    true,
	"warning": true,
	"info":    true,
	"debug":   true,
	"trace":   true,
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		HistoryCapacity: DefaultHistoryCapacity,
		IgnoreEmptyRows: true,
		LogLevel:        "warn",
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure. A zero HistoryCapacity is valid and
// means "use the default".
func (c Config) Validate() error {
	if c.HistoryCapacity < 0 {
		return ErrCapacityNegative
	}
	if utf8.RuneCountInString(c.LineDelimiter) > 1 {
		return ErrLineDelimiterInvalid
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
