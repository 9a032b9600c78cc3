// Package restore loads a staged dump into the destination database by
// shelling out to mongorestore.
//
// Import uses mirror semantics: every destination collection sharing a
// name with a staged collection is dropped and recreated. Collections
// present at the destination but absent from the dump are left alone.
// No rollback is attempted on failure; the destination may be left
// partially replaced and operators must re-run or restore from the
// destination's own backups.
package restore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docflow/atlasmigrate/pkg/mongotools"
)

// Options configures one import run.
type Options struct {
	// DestinationURI is the target connection string. Treated as a
	// secret; never logged in full.
	DestinationURI string

	// Database is the database name under the staging path.
	Database string

	// StagingPath is the directory the export wrote to.
	StagingPath string

	// Gzip must match the export's compression setting.
	Gzip bool
}

// Importer runs mongorestore.
type Importer struct {
	runner mongotools.Runner
}

// New creates an Importer using the given runner.
func New(runner mongotools.Runner) *Importer {
	return &Importer{runner: runner}
}

// Run executes the import.
func (i *Importer) Run(ctx context.Context, opts Options) error {
	dumpDir := filepath.Join(opts.StagingPath, opts.Database)
	if _, err := os.Stat(dumpDir); err != nil {
		return fmt.Errorf("staged dump not found at %s: %w", dumpDir, err)
	}

	args := []string{
		"--uri", opts.DestinationURI,
		"--nsInclude", opts.Database + ".*",
		"--drop",
	}
	if opts.Gzip {
		args = append(args, "--gzip")
	}
	args = append(args, "--dir", opts.StagingPath)

	out, err := i.runner.Run(ctx, mongotools.ToolMongorestore, args...)
	if err != nil {
		tail := mongotools.OutputTail(out, 10)
		if tail != "" {
			return fmt.Errorf("import failed: %w\n%s", err, tail)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	return nil
}
