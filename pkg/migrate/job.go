// Package migrate implements the backup-verify-restore migration
// pipeline: a fixed-order sequence of stages threading one MigrationJob
// from pending to completed, halting at the first fatal stage error.
package migrate

import (
	"time"

	"github.com/google/uuid"

	"github.com/docflow/atlasmigrate/pkg/manifest"
	"github.com/docflow/atlasmigrate/pkg/verify"
)

// JobState is the lifecycle state of a migration job.
//
// NOTE: These values appear in JSONL output and are part of the stable
// output contract.
type JobState string

const (
	StatePending               JobState = "pending"
	StateCheckingPrerequisites JobState = "checking-prerequisites"
	StateProbingConnectivity   JobState = "probing-connectivity"
	StateExporting             JobState = "exporting"
	StateImporting             JobState = "importing"
	StateVerifying             JobState = "verifying"
	StateCompleted             JobState = "completed"
	StateFailed                JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is the unit of work for one end-to-end migration run.
//
// A job owns its staging path exclusively from export through
// verification. Completed and failed are terminal; a failed job is
// restarted from pending, never resumed.
type Job struct {
	// ID is the correlation ID for output records.
	ID string

	// SourceEndpoint is the origin address (host:port).
	SourceEndpoint string

	// DestinationURI is the target connection string. Secret.
	DestinationURI string

	// Database is the logical database migrated as a unit.
	Database string

	// StagingPath holds the intermediate dump.
	StagingPath string

	// Collections is the fixed manifest used for verification.
	Collections []string

	// State is the current lifecycle state.
	State JobState

	// FailedStage names the stage that failed. Set only with StateFailed.
	FailedStage string

	// FailureReason is the diagnostic for a failed job.
	FailureReason string

	// Counts holds verification results. Transient output of the
	// verification stage.
	Counts []verify.CollectionCount

	// Warnings holds non-fatal verification warnings.
	Warnings []verify.Warning

	// StateHistory records every state entered, in order.
	StateHistory []JobState

	// StartedAt is when the run began.
	StartedAt time.Time
}

// NewJob constructs a pending job from a validated manifest. The id is
// the correlation ID shared with the job's output writer; a fresh one
// is minted when empty.
func NewJob(m *manifest.Manifest, id string) *Job {
	if id == "" {
		id = uuid.New().String()
	}
	j := &Job{
		ID:             id,
		SourceEndpoint: m.Source.Endpoint,
		DestinationURI: m.Destination.URI,
		Database:       m.Database,
		StagingPath:    m.Staging.Path,
		Collections:    append([]string(nil), m.Collections...),
	}
	j.setState(StatePending)
	return j
}

func (j *Job) setState(s JobState) {
	j.State = s
	j.StateHistory = append(j.StateHistory, s)
}

func (j *Job) fail(stage string, reason string) {
	j.FailedStage = stage
	j.FailureReason = reason
	j.setState(StateFailed)
}

func (j *Job) complete() {
	j.setState(StateCompleted)
}
