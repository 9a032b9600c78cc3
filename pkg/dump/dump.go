// Package dump produces an on-disk snapshot of the source database by
// shelling out to mongodump.
//
// The dump covers every collection in the database, not only the names
// in the job's collection manifest; the manifest is used later for
// verification reporting only.
package dump

import (
	"context"
	"fmt"
	"os"

	"github.com/docflow/atlasmigrate/pkg/mongotools"
)

// Options configures one export run.
type Options struct {
	// SourceEndpoint is the origin address as host:port.
	SourceEndpoint string

	// Database is the database to dump.
	Database string

	// StagingPath receives the dump under <StagingPath>/<Database>/.
	// Created if absent. Re-running against a non-empty path is
	// permitted; mongodump overwrites its own output.
	StagingPath string

	// Gzip compresses each dump unit.
	Gzip bool
}

// Exporter runs mongodump.
type Exporter struct {
	runner mongotools.Runner
}

// New creates an Exporter using the given runner.
func New(runner mongotools.Runner) *Exporter {
	return &Exporter{runner: runner}
}

// Run executes the export.
//
// On failure the partially written staging directory is left in place
// for inspection; cleanup is the operator's decision.
func (e *Exporter) Run(ctx context.Context, opts Options) error {
	if err := os.MkdirAll(opts.StagingPath, 0o755); err != nil {
		return fmt.Errorf("create staging directory %s: %w", opts.StagingPath, err)
	}

	args := []string{
		"--host", opts.SourceEndpoint,
		"--db", opts.Database,
		"--out", opts.StagingPath,
	}
	if opts.Gzip {
		args = append(args, "--gzip")
	}

	out, err := e.runner.Run(ctx, mongotools.ToolMongodump, args...)
	if err != nil {
		tail := mongotools.OutputTail(out, 10)
		if tail != "" {
			return fmt.Errorf("export failed: %w\n%s", err, tail)
		}
		return fmt.Errorf("export failed: %w", err)
	}

	return nil
}
