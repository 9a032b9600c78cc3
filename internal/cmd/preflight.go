package cmd

import (
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docflow/atlasmigrate/internal/observability"
	"github.com/docflow/atlasmigrate/pkg/mongotools"
	"github.com/docflow/atlasmigrate/pkg/output"
	"github.com/docflow/atlasmigrate/pkg/preflight"
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check that the required MongoDB tools are installed",
	Long: `Check that mongodump, mongorestore, and mongosh are present and
invocable. The check has no side effects and performs no network calls;
it is the same check the migrate command runs before touching anything.

It emits a JSONL preflight record (atlasmigrate.preflight.v1).

Examples:
  atlasmigrate preflight
  atlasmigrate preflight --tool mongorestore`,
	RunE: runPreflight,
}

var preflightTool string

func init() {
	rootCmd.AddCommand(preflightCmd)
	preflightCmd.Flags().StringVar(&preflightTool, "tool", "", "Check a single tool instead of all three")
}

func runPreflight(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tools := mongotools.RequiredTools
	if preflightTool != "" {
		tools = []string{preflightTool}
	}

	res := preflight.CheckTools(mongotools.ExecRunner{}, tools)

	w := output.NewJSONLWriter(os.Stdout, uuid.New().String())
	defer func() { _ = w.Close() }()

	if err := w.WritePreflight(ctx, res.Record()); err != nil {
		return err
	}

	for _, check := range res.Checks {
		if check.Found {
			observability.CLILogger.Info("Tool found",
				zap.String("tool", check.Tool),
				zap.String("path", check.Path))
		} else {
			observability.CLILogger.Error("Tool missing",
				zap.String("tool", check.Tool),
				zap.String("detail", check.Detail))
		}
	}

	if err := res.Err(); err != nil {
		return exitError(foundry.ExitFileNotFound, "Preflight failed", err)
	}
	return nil
}
