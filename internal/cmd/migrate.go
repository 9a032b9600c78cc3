package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docflow/atlasmigrate/internal/config"
	"github.com/docflow/atlasmigrate/internal/observability"
	"github.com/docflow/atlasmigrate/pkg/artifact"
	"github.com/docflow/atlasmigrate/pkg/manifest"
	"github.com/docflow/atlasmigrate/pkg/migrate"
	"github.com/docflow/atlasmigrate/pkg/output"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run a migration job from manifest",
	Long: `Run a migration job as defined in a YAML or JSON manifest file.

The manifest specifies the source endpoint, the destination connection
string, the database, the staging directory, and the collection
manifest used for verification.

Example:
  atlasmigrate migrate --job migration.yaml
  atlasmigrate migrate --job migration.yaml --output run.jsonl
  atlasmigrate migrate --job migration.yaml --dry-run
  atlasmigrate migrate --job migration.yaml --skip-verify`,
	RunE: runMigrate,
}

var (
	migrateJobPath       string
	migrateOutput        string
	migrateDryRun        bool
	migratePlan          bool
	migrateQuiet         bool
	migrateSkipVerify    bool
	migrateSkipArtifacts bool
)

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVarP(&migrateJobPath, "job", "j", "", "Path to job manifest (required)")
	migrateCmd.Flags().StringVarP(&migrateOutput, "output", "o", "", "Override output destination")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Validate manifest and show plan without executing")
	migrateCmd.Flags().BoolVar(&migratePlan, "plan", false, "Alias for --dry-run")
	migrateCmd.Flags().BoolVarP(&migrateQuiet, "quiet", "q", false, "Suppress progress logging; JSONL output is unaffected")
	migrateCmd.Flags().BoolVar(&migrateSkipVerify, "skip-verify", false, "Skip the verification stage")
	migrateCmd.Flags().BoolVar(&migrateSkipArtifacts, "skip-artifacts", false, "Do not emit deployment artifacts")

	_ = migrateCmd.MarkFlagRequired("job")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if migrateQuiet {
		observability.SetQuiet()
	}

	m, err := manifest.Load(migrateJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", migrateJobPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	observability.CLILogger.Debug("Loaded manifest",
		zap.String("path", migrateJobPath),
		zap.String("source", m.Source.Endpoint),
		zap.String("destination", migrate.Redact(m.Destination.URI)),
		zap.String("database", m.Database))

	if migratePlan || migrateDryRun {
		return showMigratePlan(m)
	}

	jobID := uuid.New().String()
	w, cleanup, err := createWriter(migrateOutput, jobID)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to open output destination", err)
	}
	defer cleanup()

	opts := []migrate.PipelineOption{migrate.WithJobID(jobID)}
	if migrateSkipVerify {
		opts = append(opts, migrate.WithSkipVerify())
	}

	observability.CLILogger.Info("Starting migration",
		zap.String("job_id", jobID),
		zap.String("database", m.Database),
		zap.String("destination", migrate.Redact(m.Destination.URI)))

	job, err := migrate.NewPipeline(m, w, opts...).Run(ctx)
	if err != nil {
		observability.CLILogger.Error("Migration failed",
			zap.String("stage", job.FailedStage),
			zap.String("reason", job.FailureReason))
		if errors.Is(err, context.Canceled) {
			return exitError(foundry.ExitSignalInt, "Migration interrupted", err)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Migration failed", err)
	}

	observability.CLILogger.Info("Migration completed",
		zap.Int("collections_counted", len(job.Counts)),
		zap.Int("warnings", len(job.Warnings)))

	if migrateSkipArtifacts {
		return nil
	}
	return emitArtifacts(ctx, m, w)
}

// emitArtifacts renders and writes the deployment artifacts after a
// completed run. This is a side effect of success, not a pipeline stage.
func emitArtifacts(ctx context.Context, m *manifest.Manifest, w output.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid application config", err)
	}

	emitter := artifact.New()
	arts, err := emitter.Render(artifact.Inputs{
		DestinationURI:    m.Destination.URI,
		Database:          m.Database,
		Port:              cfg.App.Port,
		NodeEnv:           cfg.App.NodeEnv,
		MaxUploadSize:     cfg.App.MaxUploadSize,
		RateLimitWindowMS: cfg.App.RateLimitWindowMS,
		RateLimitMax:      cfg.App.RateLimitMax,
		CORSOrigin:        cfg.App.CORSOrigin,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to render artifacts", err)
	}

	if err := emitter.Write(m.Artifacts.OutDir, arts); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write artifacts", err)
	}

	for _, a := range arts {
		_ = w.WriteArtifact(ctx, &output.ArtifactRecord{
			Kind: string(a.Kind),
			Path: a.Path,
		})
		observability.CLILogger.Info("Wrote artifact",
			zap.String("kind", string(a.Kind)),
			zap.String("path", a.Path))
	}
	return nil
}

// showMigratePlan displays what would run without executing.
func showMigratePlan(m *manifest.Manifest) error {
	fmt.Println("=== Migration Plan (dry-run) ===")
	fmt.Println()
	fmt.Printf("Source:       %s\n", m.Source.Endpoint)
	fmt.Printf("Destination:  %s\n", migrate.Redact(m.Destination.URI))
	fmt.Printf("Database:     %s\n", m.Database)
	fmt.Printf("Staging:      %s (gzip: %v)\n", m.Staging.Path, m.GzipEnabled())
	fmt.Printf("Artifacts:    %s\n", m.Artifacts.OutDir)
	fmt.Println()
	fmt.Printf("Collections (%d):\n", len(m.Collections))
	for _, name := range m.Collections {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println()
	fmt.Println("Stages: preflight -> probe -> export -> import -> verify")
	if migrateSkipVerify {
		fmt.Println("  (verify skipped by --skip-verify)")
	}
	return nil
}

// createWriter builds the JSONL output writer for a destination.
// Returns the writer, a cleanup function, and any error.
func createWriter(dest, jobID string) (output.Writer, func(), error) {
	if dest == "" || dest == "stdout" {
		w := output.NewJSONLWriter(os.Stdout, jobID)
		return w, func() { _ = w.Close() }, nil
	}

	path := strings.TrimPrefix(dest, "file:")

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, jobID)
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}
