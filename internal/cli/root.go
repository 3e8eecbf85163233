// Package cli wires configuration, logging, and the command adapter into the
// lined executable.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnvidr/lined/internal/config"
	"github.com/arnvidr/lined/internal/logger"
	"github.com/arnvidr/lined/pkg/adapter"
	"github.com/arnvidr/lined/pkg/lint"
	"github.com/arnvidr/lined/pkg/session"
)

const version = "0.1.0"

// ErrCommandFailed marks an editing command that finished with a non-zero
// exit code. The response text has already been written; main only needs to
// translate this into the process exit status.
var ErrCommandFailed = errors.New("command failed")

var (
	cfgFile    string
	logLevel   string
	filePath   string
	windowSize int
	overlap    int
	lintArgv   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lined [command ...]",
	Short: "lined - windowed file-editing session for automated agents",
	Long: `lined lets a calling agent view a bounded window of a text file and
atomically replace line ranges, with undo and an optional lint gate that
rejects edits introducing new diagnostics.

With arguments, lined executes a single editing command (replacement text is
read from stdin until a sentinel line). Without arguments it reads command
lines from stdin until end of stream or "exit".

Editing commands:
  open <path> [line]       open a file (replaces any open session)
  change <start>:<end>     replace the 1-based inclusive line range
  goto <line>              reposition the window
  scroll_up / scroll_down  move the window by its size minus the overlap
  undo                     revert the most recent edit
  close                    discard the session`,
	Version:      version,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lined/lined.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&filePath, "file", "", "file to open before executing commands")
	rootCmd.Flags().IntVar(&windowSize, "window", 0, "lines shown per window (overrides config)")
	rootCmd.Flags().IntVar(&overlap, "overlap", -1, "context lines kept when the window moves (overrides config)")
	rootCmd.Flags().StringVar(&lintArgv, "lint", "", "lint command to gate edits with, e.g. \"flake8 --isolated {file}\"")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, closeLogger, err := setup()
	if err != nil {
		return err
	}
	defer closeLogger()

	applyFlagOverrides(cfg)

	gate, err := buildGate(cfg)
	if err != nil {
		return err
	}

	sess := session.New(session.Config{
		WindowSize: cfg.Editor.WindowSize,
		Overlap:    cfg.Editor.Overlap,
		Gate:       gate,
		WatchFile:  cfg.Editor.WatchFile,
	})
	defer sess.Close()

	ad := adapter.New(sess, cmd.InOrStdin(), adapter.Config{Sentinels: cfg.Editor.Sentinels})
	out := cmd.OutOrStdout()

	if filePath != "" {
		text, err := sess.Open(filePath)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
	}

	if len(args) > 0 {
		resp := ad.Execute(cmd.Context(), strings.Join(args, " "))
		fmt.Fprint(out, resp.Text)
		if resp.Code != adapter.ExitOK {
			return ErrCommandFailed
		}
		return nil
	}

	if code := ad.Run(cmd.Context(), out); code != adapter.ExitOK {
		return ErrCommandFailed
	}
	return nil
}

// setup loads the config and installs the global logger.
func setup() (*config.Config, func(), error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	lg, err := logger.New(logger.Config{
		Level:   level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, func() { _ = lg.Close() }, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if windowSize > 0 {
		cfg.Editor.WindowSize = windowSize
	}
	if overlap >= 0 {
		cfg.Editor.Overlap = overlap
	}
	if lintArgv != "" {
		cfg.Lint.Enabled = true
		cfg.Lint.Command = strings.Fields(lintArgv)
	}
}

// buildGate constructs the validation gate, or nil when linting is disabled.
func buildGate(cfg *config.Config) (lint.Gate, error) {
	if !cfg.Lint.Enabled {
		return nil, nil
	}

	gate, err := lint.NewCommandGate(
		cfg.Lint.Command,
		lint.Format(cfg.Lint.Format),
		time.Duration(cfg.Lint.Timeout)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid lint configuration: %w", err)
	}
	return gate, nil
}

// exitCode translates an Execute error into the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrCommandFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}

// Main is the program entrypoint behind main.main.
func Main() int {
	return exitCode(Execute())
}
