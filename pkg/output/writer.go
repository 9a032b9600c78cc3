package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records for migration runs.
//
// Implementations must be safe for concurrent use from multiple
// goroutines. Each Write* method emits a complete record as a
// single line of JSON followed by a newline.
type Writer interface {
	// WriteStage emits a stage transition record.
	WriteStage(ctx context.Context, stage *StageRecord) error

	// WritePreflight emits a preflight record.
	WritePreflight(ctx context.Context, preflight *PreflightRecord) error

	// WriteCount emits a verification count record.
	WriteCount(ctx context.Context, count *CountRecord) error

	// WriteWarning emits a verification warning record.
	WriteWarning(ctx context.Context, warning *WarningRecord) error

	// WriteArtifact emits a generated artifact record.
	WriteArtifact(ctx context.Context, artifact *ArtifactRecord) error

	// WriteSummary emits a summary record.
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// WriteError emits a fatal error record.
	WriteError(ctx context.Context, err *ErrorRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// JSONLWriter is safe for concurrent use. Writes are serialized using
// a mutex to ensure atomic line writes (no interleaved output).
type JSONLWriter struct {
	w     io.Writer
	jobID string
	mu    sync.Mutex

	// closed indicates the writer has been closed.
	closed bool
}

// NewJSONLWriter creates a new JSONL writer.
//
// Parameters:
//   - w: The underlying writer (stdout, file, etc.)
//   - jobID: Correlation ID for this migration job
func NewJSONLWriter(w io.Writer, jobID string) *JSONLWriter {
	return &JSONLWriter{
		w:     w,
		jobID: jobID,
	}
}

// WriteStage emits a stage transition record.
func (jw *JSONLWriter) WriteStage(ctx context.Context, stage *StageRecord) error {
	return jw.writeRecord(ctx, TypeStage, stage)
}

// WritePreflight emits a preflight record.
func (jw *JSONLWriter) WritePreflight(ctx context.Context, preflight *PreflightRecord) error {
	return jw.writeRecord(ctx, TypePreflight, preflight)
}

// WriteCount emits a verification count record.
func (jw *JSONLWriter) WriteCount(ctx context.Context, count *CountRecord) error {
	return jw.writeRecord(ctx, TypeCount, count)
}

// WriteWarning emits a verification warning record.
func (jw *JSONLWriter) WriteWarning(ctx context.Context, warning *WarningRecord) error {
	return jw.writeRecord(ctx, TypeWarning, warning)
}

// WriteArtifact emits a generated artifact record.
func (jw *JSONLWriter) WriteArtifact(ctx context.Context, artifact *ArtifactRecord) error {
	return jw.writeRecord(ctx, TypeArtifact, artifact)
}

// WriteSummary emits a summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// WriteError emits a fatal error record.
func (jw *JSONLWriter) WriteError(ctx context.Context, err *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, err)
}

// Close marks the writer as closed.
//
// If the underlying writer implements io.Closer, it is NOT closed.
// The caller is responsible for closing the underlying writer.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	jw.closed = true
	return nil
}

// writeRecord marshals data and writes a complete record line.
//
// This method holds the mutex for the entire operation to ensure
// atomic line writes. The record is written as a single line of
// JSON followed by a newline character.
func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	rec := Record{
		Type:  recordType,
		TS:    time.Now().UTC(),
		JobID: jw.jobID,
		Data:  payload,
	}

	line, err := json.Marshal(&rec)
	if err != nil {
		return err
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}

	if _, err := jw.w.Write(line); err != nil {
		return err
	}
	_, err = jw.w.Write([]byte("\n"))
	return err
}
