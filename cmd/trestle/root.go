// Root command for the trestle CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trestle/internal/paths"
	"github.com/mesh-intelligence/trestle/internal/session"
	"github.com/mesh-intelligence/trestle/internal/shell"
	"github.com/mesh-intelligence/trestle/pkg/trestle"
	"github.com/mesh-intelligence/trestle/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagSchema    string
	flagCommand   string
	flagNoHeader  bool
	flagVerbose   bool
	flagCapacity  int
)

// cfg is the editor configuration resolved by PersistentPreRunE from the
// config file, environment, and flags.
var cfg types.Config

var rootCmd = &cobra.Command{
	Use:   "trestle [file]",
	Short: "Trestle is an interactive editor for delimited tabular data",
	Long: `Trestle edits CSV-like files through commands: structural edits, cell
edits with per-column validation rules, snapshot-based undo, and schema
files that apply rules in bulk. Run it with a file to edit, pipe a command
script into it, or pass a one-off batch with --command.`,
	Version:      trestle.Version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version needs no config and must not create the config dir.
		if cmd.Name() == "version" {
			return nil
		}
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		cfg = configFromViper(v, configDir)
		if flagCapacity > 0 {
			cfg.HistoryCapacity = flagCapacity
		}
		if flagVerbose {
			cfg.LogLevel = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		configureLogging(cfg.LogLevel)
		return nil
	},
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.Flags().StringVar(&flagSchema, "schema", "", "schema file applied after loading the file")
	rootCmd.Flags().StringVarP(&flagCommand, "command", "c", "", "run a semicolon-separated command batch and exit")
	rootCmd.Flags().BoolVar(&flagNoHeader, "no-header", false, "treat the file's first record as data, not column names")
	rootCmd.Flags().IntVar(&flagCapacity, "capacity", 0, "undo history capacity (default from config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// runRoot loads the optional file and schema, then hands control to the
// batch from --command or the interactive shell.
func runRoot(cmd *cobra.Command, args []string) error {
	sh := shell.New(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	sess := sh.Session()

	if len(args) == 1 {
		if _, err := sess.ImportFile(args[0], !flagNoHeader); err != nil {
			return err
		}
	}
	if flagSchema != "" {
		if err := sess.ApplySchemaFile(flagSchema, false); err != nil {
			return err
		}
	}
	if flagCommand != "" {
		return sh.RunBatch(flagCommand)
	}
	return sh.Run()
}

// configureLogging sets the logrus level, falling back to warn when the
// level string is empty.
func configureLogging(level string) {
	if level == "" {
		log.SetLevel(log.WarnLevel)
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		// Validate accepted the level, so this cannot happen for config
		// values; keep the default rather than fail startup.
		log.SetLevel(log.WarnLevel)
		return
	}
	log.SetLevel(parsed)
}

// Execute runs the root command and exits nonzero on failure: 1 for user
// errors, 2 for system errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "trestle:", err)
		if isUserError(err) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
}

// isUserError reports whether the error stems from user input rather than
// the system: bad commands, validation failures, addressing mistakes, or
// rejected configuration.
func isUserError(err error) bool {
	for _, sentinel := range []error{
		session.ErrUsage,
		session.ErrUnknownCommand,
		session.ErrNoPage,
		session.ErrUnknownPage,
		session.ErrUnknownPreset,
		types.ErrTypeMismatch,
		types.ErrConstraintViolation,
		types.ErrInvalidLimiter,
		types.ErrInvalidColumnName,
		types.ErrOutOfRange,
		types.ErrUnknownColumn,
		types.ErrRowLengthMismatch,
		types.ErrCapacityNegative,
		types.ErrLineDelimiterInvalid,
		types.ErrLogLevelUnknown,
		os.ErrNotExist,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
