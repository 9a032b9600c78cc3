// Package cmd implements the atlasmigrate CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/docflow/atlasmigrate/internal/config"
	"github.com/docflow/atlasmigrate/internal/observability"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "atlasmigrate",
	Short: "Migrate a local MongoDB database to a managed Atlas cluster",
	Long: `atlasmigrate moves a MongoDB database from a locally hosted instance to a
managed Atlas cluster through a sequential backup-verify-restore pipeline:

  1. prerequisite check   (mongodump, mongorestore, mongosh on PATH)
  2. connectivity probe   (single ping per endpoint)
  3. export               (mongodump to a local staging directory)
  4. import               (mongorestore --drop, mirror semantics)
  5. verification         (per-collection document counts, advisory)

After a completed run it emits deployment artifacts reflecting the new
destination. Stages are fail-fast: the first fatal error halts the run
with a non-zero exit code and no automatic retry or rollback.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Config sets the base level; --verbose overrides it. Invalid
		// config surfaces later, from the commands that require it.
		if cfg, err := config.Load(); err == nil {
			observability.SetLevel(cfg.Logging.Level)
		}
		if rootVerbose {
			observability.SetVerbose()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}

// codedError carries a process exit code through cobra.
type codedError struct {
	code    int
	message string
	err     error
}

func (e *codedError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *codedError) Unwrap() error { return e.err }

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &codedError{code: code, message: message, err: err}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	observability.CLILogger.Error(err.Error())

	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	if errors.Is(err, context.Canceled) {
		return foundry.ExitSignalInt
	}
	return 1
}
