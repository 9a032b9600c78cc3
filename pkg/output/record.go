// Package output provides JSONL output for migration runs.
//
// Output is structured as typed record envelopes containing stage
// transitions, verification counts, warnings, and a final summary.
// Each line is a self-contained JSON object that can be parsed
// independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: atlasmigrate.<type>.v<version>
const (
	// TypeStage identifies stage transition records.
	TypeStage = "atlasmigrate.stage.v1"

	// TypePreflight identifies tool prerequisite check records.
	TypePreflight = "atlasmigrate.preflight.v1"

	// TypeCount identifies per-collection verification count records.
	TypeCount = "atlasmigrate.count.v1"

	// TypeWarning identifies non-fatal verification warning records.
	TypeWarning = "atlasmigrate.warning.v1"

	// TypeArtifact identifies generated artifact records.
	TypeArtifact = "atlasmigrate.artifact.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "atlasmigrate.summary.v1"

	// TypeError identifies fatal error records.
	TypeError = "atlasmigrate.error.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field. The type field determines how to
// interpret the Data payload.
type Record struct {
	// Type identifies the record type (e.g., "atlasmigrate.stage.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this migration job.
	JobID string `json:"job_id"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// StageRecord is the data payload for stage transitions.
type StageRecord struct {
	// Stage is the stage name (e.g., "export").
	Stage string `json:"stage"`

	// State is the job state entered with this stage.
	State string `json:"state"`
}

// PreflightRecord is the data payload for prerequisite tool checks.
//
// Preflight records are emitted before any state-mutating action. They
// provide an explicit contract for which tools were checked and whether
// each one is invocable.
type PreflightRecord struct {
	Results []PreflightCheckResult `json:"results"`
}

// PreflightCheckResult is a single tool check result.
type PreflightCheckResult struct {
	Tool   string `json:"tool"`
	Found  bool   `json:"found"`
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// CountRecord is the data payload for per-collection counts.
type CountRecord struct {
	Collection string `json:"collection"`
	Documents  int64  `json:"documents"`
}

// WarningRecord is the data payload for non-fatal verification warnings.
//
// Warnings are emitted as records rather than failing the job, allowing
// partial verification results when some count queries fail.
type WarningRecord struct {
	Collection string `json:"collection"`
	Detail     string `json:"detail"`
}

// ArtifactRecord is the data payload for a generated configuration file.
type ArtifactRecord struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// SummaryRecord is the data payload for the final job summary.
type SummaryRecord struct {
	// State is the terminal job state ("completed" or "failed").
	State string `json:"state"`

	// FailedStage names the stage that failed, if any.
	FailedStage string `json:"failed_stage,omitempty"`

	// FailureReason is the human-readable diagnostic, if any.
	FailureReason string `json:"failure_reason,omitempty"`

	// CollectionsCounted is the number of successful count queries.
	CollectionsCounted int `json:"collections_counted"`

	// Warnings is the number of verification warnings.
	Warnings int `json:"warnings"`

	// DurationMS is the wall-clock duration of the run.
	DurationMS int64 `json:"duration_ms"`
}

// ErrorRecord is the data payload for fatal stage errors.
type ErrorRecord struct {
	// Stage names the stage that produced the error.
	Stage string `json:"stage"`

	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeToolMissing indicates a required external tool is absent.
	ErrCodeToolMissing = "TOOL_MISSING"

	// ErrCodeUnreachable indicates an endpoint ping failed.
	ErrCodeUnreachable = "UNREACHABLE"

	// ErrCodeExportFailed indicates the export subprocess failed.
	ErrCodeExportFailed = "EXPORT_FAILED"

	// ErrCodeImportFailed indicates the import subprocess failed.
	ErrCodeImportFailed = "IMPORT_FAILED"

	// ErrCodeInterrupted indicates the run was cancelled mid-stage.
	ErrCodeInterrupted = "INTERRUPTED"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("output writer is closed")
