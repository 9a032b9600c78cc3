package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docflow/atlasmigrate/internal/observability"
	"github.com/docflow/atlasmigrate/pkg/manifest"
	"github.com/docflow/atlasmigrate/pkg/migrate"
	"github.com/docflow/atlasmigrate/pkg/output"
	"github.com/docflow/atlasmigrate/pkg/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report destination document counts for the collection manifest",
	Long: `Query the destination for per-collection document counts and report
them, without running the migration. Counts are advisory: they are
surfaced to the operator, not compared against the source, and a failed
count query for one collection never aborts the rest.

Examples:
  atlasmigrate verify --job migration.yaml
  atlasmigrate verify --job migration.yaml --only 'project*'
  atlasmigrate verify --job migration.yaml --exclude audittrails
  atlasmigrate verify --job migration.yaml --rate-limit 5`,
	RunE: runVerify,
}

var (
	verifyJobPath   string
	verifyOutput    string
	verifyOnly      string
	verifyExclude   string
	verifyRateLimit float64
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyJobPath, "job", "j", "", "Path to job manifest (required)")
	verifyCmd.Flags().StringVarP(&verifyOutput, "output", "o", "", "Override output destination")
	verifyCmd.Flags().StringVar(&verifyOnly, "only", "", "Only count collections matching this glob")
	verifyCmd.Flags().StringVar(&verifyExclude, "exclude", "", "Skip collections matching this glob")
	verifyCmd.Flags().Float64Var(&verifyRateLimit, "rate-limit", 0, "Maximum count queries per second (0 = unlimited)")

	_ = verifyCmd.MarkFlagRequired("job")
}

// resolveRateLimit picks the effective count-query rate limit. An
// explicitly set flag wins over the manifest, including an explicit
// zero to disable a manifest-set limit.
func resolveRateLimit(flagSet bool, flagValue, manifestValue float64) float64 {
	if flagSet {
		return flagValue
	}
	return manifestValue
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(verifyJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", verifyJobPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	collections, err := verify.FilterCollections(m.Collections, verifyOnly, verifyExclude)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid collection filter", err)
	}
	if len(collections) == 0 {
		observability.CLILogger.Warn("No collections match the given filters")
		return nil
	}

	rateLimit := resolveRateLimit(cmd.Flags().Changed("rate-limit"), verifyRateLimit, m.Verify.RateLimit)

	w, cleanup, err := createWriter(verifyOutput, uuid.New().String())
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to open output destination", err)
	}
	defer cleanup()

	v := verify.New(verify.WithRateLimit(rateLimit))
	res, err := v.Run(ctx, m.Destination.URI, m.Database, collections)
	if err != nil {
		observability.CLILogger.Error("Verification failed",
			zap.String("destination", migrate.Redact(m.Destination.URI)),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Cannot reach destination", err)
	}

	for _, c := range res.Counts {
		_ = w.WriteCount(ctx, &output.CountRecord{Collection: c.Name, Documents: c.Documents})
		observability.CLILogger.Info("Counted collection",
			zap.String("collection", c.Name),
			zap.Int64("documents", c.Documents))
	}
	for _, warn := range res.Warnings {
		_ = w.WriteWarning(ctx, &output.WarningRecord{Collection: warn.Collection, Detail: warn.Detail})
		observability.CLILogger.Warn("Count query failed",
			zap.String("collection", warn.Collection),
			zap.String("detail", warn.Detail))
	}

	observability.CLILogger.Info("Verification finished",
		zap.Int("counted", len(res.Counts)),
		zap.Int("warnings", len(res.Warnings)))
	return nil
}
