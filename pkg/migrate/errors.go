package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/docflow/atlasmigrate/pkg/output"
)

// ToolMissingError indicates a required external tool is not invocable.
// Fatal, pre-flight only.
type ToolMissingError struct {
	Tool string
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("required tool not found: %s", e.Tool)
}

// ConnectivityError indicates an endpoint could not be reached: a
// failed ping in the probe stage, or a count connection that could not
// be opened during verification. Fatal. Endpoint holds the redacted
// endpoint label, never the raw connection string.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ExportError indicates the export subprocess exited non-zero. Fatal;
// the staging directory is left intact for diagnosis.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string { return e.Err.Error() }

func (e *ExportError) Unwrap() error { return e.Err }

// ImportError indicates the import subprocess exited non-zero. Fatal;
// the destination may be left partially replaced.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string { return e.Err.Error() }

func (e *ImportError) Unwrap() error { return e.Err }

// StageError wraps a fatal error with the stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// classifyErrCode maps a stage error to its JSONL error code.
func classifyErrCode(err error) string {
	var toolErr *ToolMissingError
	var connErr *ConnectivityError
	var exportErr *ExportError
	var importErr *ImportError

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return output.ErrCodeInterrupted
	case errors.As(err, &toolErr):
		return output.ErrCodeToolMissing
	case errors.As(err, &connErr):
		return output.ErrCodeUnreachable
	case errors.As(err, &exportErr):
		return output.ErrCodeExportFailed
	case errors.As(err, &importErr):
		return output.ErrCodeImportFailed
	default:
		return output.ErrCodeInternal
	}
}
