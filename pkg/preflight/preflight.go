// Package preflight verifies that the external MongoDB tools required
// by the migration pipeline are present and invocable.
//
// The check is idempotent, has no side effects, and performs no network
// calls. It runs before any state-mutating stage so a missing tool is
// surfaced before export or import is ever attempted.
package preflight

import (
	"fmt"

	"github.com/docflow/atlasmigrate/pkg/mongotools"
	"github.com/docflow/atlasmigrate/pkg/output"
)

// Result holds the outcome of checking all required tools.
type Result struct {
	// Checks contains one entry per required tool, in check order.
	Checks []output.PreflightCheckResult

	// Missing lists the tools that were not invocable, in check order.
	Missing []string
}

// OK reports whether every required tool was found.
func (r *Result) OK() bool {
	return len(r.Missing) == 0
}

// Record converts the result to its JSONL payload.
func (r *Result) Record() *output.PreflightRecord {
	return &output.PreflightRecord{Results: r.Checks}
}

// Check probes every required tool through the given runner.
//
// All tools are checked even after the first miss so the operator sees
// the complete picture in one run. Err returns the aggregate failure.
func Check(runner mongotools.Runner) *Result {
	return CheckTools(runner, mongotools.RequiredTools)
}

// CheckTools probes the named tools through the given runner.
func CheckTools(runner mongotools.Runner, tools []string) *Result {
	res := &Result{}

	for _, tool := range tools {
		path, err := runner.LookPath(tool)
		if err != nil {
			res.Checks = append(res.Checks, output.PreflightCheckResult{
				Tool:   tool,
				Found:  false,
				Detail: err.Error(),
			})
			res.Missing = append(res.Missing, tool)
			continue
		}
		res.Checks = append(res.Checks, output.PreflightCheckResult{
			Tool:  tool,
			Found: true,
			Path:  path,
		})
	}

	return res
}

// Err returns an error naming the first missing tool, or nil when all
// tools were found.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("required tool not found: %s", r.Missing[0])
}
