package dump

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls [][]string
	out   []byte
	err   error
}

func (f *fakeRunner) LookPath(tool string) (string, error) {
	return "/usr/local/bin/" + tool, nil
}

func (f *fakeRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{tool}, args...))
	return f.out, f.err
}

func TestRun_InvokesMongodump(t *testing.T) {
	staging := filepath.Join(t.TempDir(), "backup")
	r := &fakeRunner{}
	e := New(r)

	err := e.Run(context.Background(), Options{
		SourceEndpoint: "localhost:27017",
		Database:       "docflow",
		StagingPath:    staging,
		Gzip:           true,
	})
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"mongodump",
		"--host", "localhost:27017",
		"--db", "docflow",
		"--out", staging,
		"--gzip",
	}, r.calls[0])

	// Staging directory is created before the tool runs.
	info, err := os.Stat(staging)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRun_NoGzip(t *testing.T) {
	r := &fakeRunner{}
	e := New(r)

	err := e.Run(context.Background(), Options{
		SourceEndpoint: "localhost:27017",
		Database:       "docflow",
		StagingPath:    t.TempDir(),
	})
	require.NoError(t, err)
	assert.NotContains(t, r.calls[0], "--gzip")
}

func TestRun_ToolFailure_KeepsStaging(t *testing.T) {
	staging := filepath.Join(t.TempDir(), "backup")
	r := &fakeRunner{
		out: []byte("connecting to source\nFailed: error dumping metadata"),
		err: errors.New("mongodump: exit status 1"),
	}

	err := New(r).Run(context.Background(), Options{
		SourceEndpoint: "localhost:27017",
		Database:       "docflow",
		StagingPath:    staging,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export failed")
	assert.Contains(t, err.Error(), "error dumping metadata")

	// Partial staging is left in place for inspection.
	_, statErr := os.Stat(staging)
	assert.NoError(t, statErr)
}

func TestRun_ExistingStagingIsIdempotent(t *testing.T) {
	staging := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staging, "leftover"), []byte("x"), 0o644))

	err := New(&fakeRunner{}).Run(context.Background(), Options{
		SourceEndpoint: "localhost:27017",
		Database:       "docflow",
		StagingPath:    staging,
	})
	require.NoError(t, err)
}
