// Package mongotools wraps invocation of the external MongoDB tooling
// (mongodump, mongorestore, mongosh).
//
// All subprocess execution in the migration pipeline goes through the
// Runner interface so stages can be exercised in tests without the
// vendor tools installed.
package mongotools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tool names expected on PATH.
const (
	ToolMongodump    = "mongodump"
	ToolMongorestore = "mongorestore"
	ToolMongosh      = "mongosh"
)

// RequiredTools lists every tool the pipeline shells out to, in the
// order they are checked.
var RequiredTools = []string{ToolMongodump, ToolMongorestore, ToolMongosh}

// Runner abstracts tool lookup and subprocess execution.
type Runner interface {
	// LookPath resolves a tool name to an executable path.
	LookPath(tool string) (string, error)

	// Run executes the tool and blocks until it exits. The combined
	// stdout/stderr output is returned in both the success and the
	// failure case so diagnostics always carry the raw tool output.
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// ExecRunner runs tools via os/exec.
//
// Cancellation of the context kills the subprocess; the pipeline treats
// that as an interrupted job, after which the staging directory must be
// considered corrupt.
type ExecRunner struct{}

// LookPath resolves a tool name using the process PATH.
func (ExecRunner) LookPath(tool string) (string, error) {
	return exec.LookPath(tool)
}

// Run executes the tool with combined output capture.
func (ExecRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, tool, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if ctx.Err() != nil {
		return buf.Bytes(), fmt.Errorf("%s interrupted: %w", tool, ctx.Err())
	}
	if err != nil {
		return buf.Bytes(), fmt.Errorf("%s: %w", tool, err)
	}
	return buf.Bytes(), nil
}

// OutputTail returns the last n lines of tool output, trimmed. Used to
// keep diagnostics readable when a tool dumps a long transcript.
func OutputTail(out []byte, n int) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
