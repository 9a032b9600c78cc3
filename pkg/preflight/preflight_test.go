package preflight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflow/atlasmigrate/pkg/mongotools"
)

type fakeRunner struct {
	missing map[string]bool
	runs    []string
}

func (f *fakeRunner) LookPath(tool string) (string, error) {
	if f.missing[tool] {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/local/bin/" + tool, nil
}

func (f *fakeRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	f.runs = append(f.runs, tool)
	return nil, nil
}

func TestCheck_AllPresent(t *testing.T) {
	r := &fakeRunner{}
	res := Check(r)

	assert.True(t, res.OK())
	require.NoError(t, res.Err())
	require.Len(t, res.Checks, 3)
	for _, c := range res.Checks {
		assert.True(t, c.Found)
		assert.NotEmpty(t, c.Path)
	}
}

func TestCheck_MissingTool(t *testing.T) {
	r := &fakeRunner{missing: map[string]bool{mongotools.ToolMongorestore: true}}
	res := Check(r)

	assert.False(t, res.OK())
	assert.Equal(t, []string{mongotools.ToolMongorestore}, res.Missing)

	err := res.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongorestore")

	// The check never runs any tool, only resolves paths.
	assert.Empty(t, r.runs)
}

func TestCheck_AllMissing_ReportsEveryTool(t *testing.T) {
	r := &fakeRunner{missing: map[string]bool{
		mongotools.ToolMongodump:    true,
		mongotools.ToolMongorestore: true,
		mongotools.ToolMongosh:      true,
	}}
	res := Check(r)

	// Checking continues past the first miss.
	require.Len(t, res.Checks, 3)
	assert.Equal(t, mongotools.RequiredTools, res.Missing)

	// The aggregate error names the first missing tool.
	assert.Contains(t, res.Err().Error(), mongotools.ToolMongodump)
}

func TestResult_Record(t *testing.T) {
	r := &fakeRunner{missing: map[string]bool{mongotools.ToolMongosh: true}}
	rec := Check(r).Record()

	require.Len(t, rec.Results, 3)
	assert.True(t, rec.Results[0].Found)
	assert.False(t, rec.Results[2].Found)
	assert.NotEmpty(t, rec.Results[2].Detail)
}
