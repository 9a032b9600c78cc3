package cmd

import (
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docflow/atlasmigrate/internal/config"
	"github.com/docflow/atlasmigrate/internal/observability"
	"github.com/docflow/atlasmigrate/pkg/artifact"
	"github.com/docflow/atlasmigrate/pkg/manifest"
	"github.com/docflow/atlasmigrate/pkg/output"
)

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Write deployment artifacts without running a migration",
	Long: `Render and write the deployment artifacts (environment file, database
config module, orchestration descriptor) from the job manifest and the
application defaults, without touching either database.

Each file is fully overwritten. Placeholder secrets in the environment
file must be replaced by the operator before deploying.

Examples:
  atlasmigrate emit --job migration.yaml
  atlasmigrate emit --job migration.yaml --out ./deploy`,
	RunE: runEmit,
}

var (
	emitJobPath string
	emitOutDir  string
)

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().StringVarP(&emitJobPath, "job", "j", "", "Path to job manifest (required)")
	emitCmd.Flags().StringVar(&emitOutDir, "out", "", "Override artifacts output directory")

	_ = emitCmd.MarkFlagRequired("job")
}

func runEmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(emitJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", emitJobPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	if emitOutDir != "" {
		m.Artifacts.OutDir = emitOutDir
	}

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

	w := output.NewJSONLWriter(os.Stdout, uuid.New().String())
	defer func() { _ = w.Close() }()

	for _, a := range arts {
		_ = w.WriteArtifact(ctx, &output.ArtifactRecord{Kind: string(a.Kind), Path: a.Path})
		observability.CLILogger.Info("Wrote artifact",
			zap.String("kind", string(a.Kind)),
			zap.String("path", a.Path),
			zap.String("dir", m.Artifacts.OutDir))
	}
	return nil
}
