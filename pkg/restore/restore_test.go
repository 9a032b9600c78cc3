package restore

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

func stagedDump(t *testing.T, db string) string {
	t.Helper()
	staging := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(staging, db), 0o755))
	return staging
}

func TestRun_InvokesMongorestoreWithDrop(t *testing.T) {
	staging := stagedDump(t, "docflow")
	r := &fakeRunner{}

	err := New(r).Run(context.Background(), Options{
		DestinationURI: "mongodb+srv://admin:pw@cluster0.example.net/",
		Database:       "docflow",
		StagingPath:    staging,
		Gzip:           true,
	})
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{
		"mongorestore",
		"--uri", "mongodb+srv://admin:pw@cluster0.example.net/",
		"--nsInclude", "docflow.*",
		"--drop",
		"--gzip",
		"--dir", staging,
	}, r.calls[0])
}

func TestRun_MissingStagedDump(t *testing.T) {
	r := &fakeRunner{}

	err := New(r).Run(context.Background(), Options{
		DestinationURI: "mongodb://admin:pw@atlas.example.com/",
		Database:       "docflow",
		StagingPath:    t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staged dump not found")
	assert.Empty(t, r.calls, "mongorestore must not run without a staged dump")
}

func TestRun_ToolFailure(t *testing.T) {
	staging := stagedDump(t, "docflow")
	r := &fakeRunner{
		out: []byte("restoring docflow.users\nFailed: bulk write exception"),
		err: errors.New("mongorestore: exit status 1"),
	}

	err := New(r).Run(context.Background(), Options{
		DestinationURI: "mongodb://admin:pw@atlas.example.com/",
		Database:       "docflow",
		StagingPath:    staging,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import failed")
	assert.Contains(t, err.Error(), "bulk write exception")
}

func TestRun_RerunSameStagingIsStable(t *testing.T) {
	// Replace semantics: running the same import twice issues identical
	// invocations, so the destination converges to the staged state.
	staging := stagedDump(t, "docflow")
	r := &fakeRunner{}
	imp := New(r)
	opts := Options{
		DestinationURI: "mongodb://admin:pw@atlas.example.com/",
		Database:       "docflow",
		StagingPath:    staging,
	}

	require.NoError(t, imp.Run(context.Background(), opts))
	require.NoError(t, imp.Run(context.Background(), opts))

	require.Len(t, r.calls, 2)
	assert.Equal(t, r.calls[0], r.calls[1])
}
