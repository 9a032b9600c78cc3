package migrate

import (
	"context"
	"time"

	"github.com/docflow/atlasmigrate/pkg/dump"
	"github.com/docflow/atlasmigrate/pkg/manifest"
	"github.com/docflow/atlasmigrate/pkg/mongotools"
	"github.com/docflow/atlasmigrate/pkg/output"
	"github.com/docflow/atlasmigrate/pkg/preflight"
	"github.com/docflow/atlasmigrate/pkg/probe"
	"github.com/docflow/atlasmigrate/pkg/restore"
	"github.com/docflow/atlasmigrate/pkg/verify"
)

// Stage is one step of the migration pipeline.
type Stage interface {
	// Name is the stage name used in diagnostics and output records.
	Name() string

	// State is the job state entered when the stage starts.
	State() JobState

	// Run executes the stage against the shared job.
	Run(ctx context.Context, job *Job) error
}

// Pipeline executes the migration stages in fixed order against one
// job, halting on the first fatal error. Execution is strictly
// sequential; each stage blocks until the invoked tool or query exits.
type Pipeline struct {
	m          *manifest.Manifest
	jobID      string
	runner     mongotools.Runner
	prober     *probe.Prober
	verifier   *verify.Verifier
	writer     output.Writer
	skipVerify bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithJobID sets the job's correlation ID. Callers pass the same ID to
// the output writer so records and the returned Job correlate. A fresh
// ID is minted when unset.
func WithJobID(id string) PipelineOption {
	return func(p *Pipeline) { p.jobID = id }
}

// WithRunner replaces the default exec-backed tool runner.
func WithRunner(r mongotools.Runner) PipelineOption {
	return func(p *Pipeline) { p.runner = r }
}

// WithProber replaces the default connectivity prober.
func WithProber(pr *probe.Prober) PipelineOption {
	return func(p *Pipeline) { p.prober = pr }
}

// WithVerifier replaces the default verifier.
func WithVerifier(v *verify.Verifier) PipelineOption {
	return func(p *Pipeline) { p.verifier = v }
}

// WithSkipVerify drops the verification stage from the run.
func WithSkipVerify() PipelineOption {
	return func(p *Pipeline) { p.skipVerify = true }
}

// NewPipeline builds a pipeline for the given manifest, writing
// progress records to w.
func NewPipeline(m *manifest.Manifest, w output.Writer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		m:      m,
		writer: w,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = mongotools.ExecRunner{}
	}
	if p.prober == nil {
		p.prober = probe.New(probe.WithRetries(m.Probe.Retries))
	}
	if p.verifier == nil {
		p.verifier = verify.New(verify.WithRateLimit(m.Verify.RateLimit))
	}
	return p
}

// Stages returns the stages this pipeline will run, in order.
func (p *Pipeline) Stages() []Stage {
	stages := []Stage{
		&preflightStage{runner: p.runner, writer: p.writer},
		&probeStage{prober: p.prober, m: p.m},
		&exportStage{exporter: dump.New(p.runner), m: p.m},
		&importStage{importer: restore.New(p.runner), m: p.m},
	}
	if !p.skipVerify {
		stages = append(stages, &verifyStage{verifier: p.verifier, m: p.m, writer: p.writer})
	}
	return stages
}

// Run executes the pipeline.
//
// The returned job is always non-nil and carries the terminal state,
// counts, and warnings. The error is the first fatal stage error,
// wrapped as a StageError; verification warnings never produce an error.
func (p *Pipeline) Run(ctx context.Context) (*Job, error) {
	job := NewJob(p.m, p.jobID)
	job.StartedAt = time.Now().UTC()

	for _, stage := range p.Stages() {
		job.setState(stage.State())
		_ = p.writer.WriteStage(ctx, &output.StageRecord{
			Stage: stage.Name(),
			State: string(stage.State()),
		})

		if err := stage.Run(ctx, job); err != nil {
			job.fail(stage.Name(), err.Error())
			_ = p.writer.WriteError(ctx, &output.ErrorRecord{
				Stage:   stage.Name(),
				Code:    classifyErrCode(err),
				Message: err.Error(),
			})
			p.writeSummary(ctx, job)
			return job, &StageError{Stage: stage.Name(), Err: err}
		}
	}

	job.complete()
	p.writeSummary(ctx, job)
	return job, nil
}

func (p *Pipeline) writeSummary(ctx context.Context, job *Job) {
	_ = p.writer.WriteSummary(ctx, &output.SummaryRecord{
		State:              string(job.State),
		FailedStage:        job.FailedStage,
		FailureReason:      job.FailureReason,
		CollectionsCounted: len(job.Counts),
		Warnings:           len(job.Warnings),
		DurationMS:         time.Since(job.StartedAt).Milliseconds(),
	})
}

// stage implementations

type preflightStage struct {
	runner mongotools.Runner
	writer output.Writer
}

func (s *preflightStage) Name() string    { return "preflight" }
func (s *preflightStage) State() JobState { return StateCheckingPrerequisites }

func (s *preflightStage) Run(ctx context.Context, job *Job) error {
	res := preflight.Check(s.runner)
	_ = s.writer.WritePreflight(ctx, res.Record())
	if !res.OK() {
		return &ToolMissingError{Tool: res.Missing[0]}
	}
	return nil
}

type probeStage struct {
	prober *probe.Prober
	m      *manifest.Manifest
}

func (s *probeStage) Name() string    { return "probe" }
func (s *probeStage) State() JobState { return StateProbingConnectivity }

func (s *probeStage) Run(ctx context.Context, job *Job) error {
	if err := s.prober.Ping(ctx, s.m.SourceURI()); err != nil {
		return &ConnectivityError{Endpoint: "source " + job.SourceEndpoint, Err: err}
	}
	if err := s.prober.Ping(ctx, job.DestinationURI); err != nil {
		return &ConnectivityError{Endpoint: "destination " + Redact(job.DestinationURI), Err: err}
	}
	return nil
}

type exportStage struct {
	exporter *dump.Exporter
	m        *manifest.Manifest
}

func (s *exportStage) Name() string    { return "export" }
func (s *exportStage) State() JobState { return StateExporting }

func (s *exportStage) Run(ctx context.Context, job *Job) error {
	err := s.exporter.Run(ctx, dump.Options{
		SourceEndpoint: job.SourceEndpoint,
		Database:       job.Database,
		StagingPath:    job.StagingPath,
		Gzip:           s.m.GzipEnabled(),
	})
	if err != nil {
		return &ExportError{Err: err}
	}
	return nil
}

type importStage struct {
	importer *restore.Importer
	m        *manifest.Manifest
}

func (s *importStage) Name() string    { return "import" }
func (s *importStage) State() JobState { return StateImporting }

func (s *importStage) Run(ctx context.Context, job *Job) error {
	err := s.importer.Run(ctx, restore.Options{
		DestinationURI: job.DestinationURI,
		Database:       job.Database,
		StagingPath:    job.StagingPath,
		Gzip:           s.m.GzipEnabled(),
	})
	if err != nil {
		return &ImportError{Err: err}
	}
	return nil
}

type verifyStage struct {
	verifier *verify.Verifier
	m        *manifest.Manifest
	writer   output.Writer
}

func (s *verifyStage) Name() string    { return "verify" }
func (s *verifyStage) State() JobState { return StateVerifying }

func (s *verifyStage) Run(ctx context.Context, job *Job) error {
	res, err := s.verifier.Run(ctx, job.DestinationURI, job.Database, job.Collections)
	if res != nil {
		job.Counts = res.Counts
		job.Warnings = res.Warnings
		for _, c := range res.Counts {
			_ = s.writer.WriteCount(ctx, &output.CountRecord{
				Collection: c.Name,
				Documents:  c.Documents,
			})
		}
		for _, w := range res.Warnings {
			_ = s.writer.WriteWarning(ctx, &output.WarningRecord{
				Collection: w.Collection,
				Detail:     w.Detail,
			})
		}
	}
	if err != nil {
		return &ConnectivityError{Endpoint: "destination " + Redact(job.DestinationURI), Err: err}
	}
	return nil
}
