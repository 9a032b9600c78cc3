package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// SupportedVersion is the only manifest version this build accepts.
const SupportedVersion = "1.0"

// ErrValidationFailed indicates the manifest failed validation.
var ErrValidationFailed = errors.New("manifest validation failed")

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Path is a dotted path to the problematic field (e.g., "source.endpoint").
	Path string

	// Message describes the validation failure.
	Message string
}

// Error implements error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("manifest validation failed with %d errors:\n", len(e)))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Validate checks the manifest for structural problems.
//
// All problems are collected and returned together so the operator can
// fix the manifest in one pass.
func (m *Manifest) Validate() error {
	var errs ValidationErrors

	if m.Version != SupportedVersion {
		errs = append(errs, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("unsupported version %q (expected %q)", m.Version, SupportedVersion),
		})
	}

	if strings.TrimSpace(m.Source.Endpoint) == "" {
		errs = append(errs, ValidationError{Path: "source.endpoint", Message: "required"})
	}

	uri := strings.TrimSpace(m.Destination.URI)
	switch {
	case uri == "":
		errs = append(errs, ValidationError{Path: "destination.uri", Message: "required"})
	case !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://"):
		errs = append(errs, ValidationError{
			Path:    "destination.uri",
			Message: "must use mongodb:// or mongodb+srv:// scheme",
		})
	}

	if strings.TrimSpace(m.Database) == "" {
		errs = append(errs, ValidationError{Path: "database", Message: "required"})
	}

	for i, name := range m.Collections {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("collections[%d]", i),
				Message: "collection name must not be empty",
			})
		}
	}

	if m.Probe.Retries < 0 {
		errs = append(errs, ValidationError{Path: "probe.retries", Message: "must not be negative"})
	}

	if m.Verify.RateLimit < 0 {
		errs = append(errs, ValidationError{Path: "verify.rate_limit", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
