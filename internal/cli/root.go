// Package cli implements the strand command-line interface: a working chain
// edited by identity, a committed baseline, and a diff between the two.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/strand/internal/logging"
	"github.com/mesh-intelligence/strand/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
}

// app carries the state resolved before any subcommand runs.
type app struct {
	flags     rootFlags
	cfg       *viper.Viper
	configDir string
	dataDir   string
	log       *slog.Logger
}

// NewRootCmd creates the top-level "strand" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logging.New(logging.DefaultConfig())}

	root := &cobra.Command{
		Use:   "strand",
		Short: "Edit an identity-keyed chain and diff it against its baseline",
		Long: "Strand keeps a working chain of records linked by prev/next identities\n" +
			"and a committed baseline. Edits address records by identity; diff reports\n" +
			"the records whose presence or links changed since the last commit.",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "storage backend: jsonl or sqlite (default from config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newRmCmd(a))
	root.AddCommand(newMvCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newNthCmd(a))
	root.AddCommand(newDiffCmd(a))
	root.AddCommand(newCommitCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "strand:", err)
		os.Exit(exitCode(err))
	}
}

// setup loads config.yaml, builds the logger and resolves the data
// directory.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if a.flags.backend != "" {
		cfg.Set(cfgKeyBackend, a.flags.backend)
	}
	a.cfg = cfg
	a.configDir = configDir

	a.log = logging.New(logging.Config{
		Level:  cfg.GetString(cfgKeyLogLevel),
		Format: cfg.GetString(cfgKeyLogFormat),
		Output: cmd.ErrOrStderr(),
	})

	a.dataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.log.Debug("configured", "config_dir", configDir, "data_dir", a.dataDir, "backend", cfg.GetString(cfgKeyBackend))
	return nil
}

// exitError tags an error with the process exit code it should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input rather than a system failure.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitSysError
}
