// Package errors defines the coded error values used across the pipeline.
// Every failure aborts the run with a descriptive message; there is no
// retry or partial-result recovery, so error values carry enough context
// for a manual re-run.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a pipeline failure.
type Code string

const (
	// CodeMissingFile indicates a required input file was not found.
	CodeMissingFile Code = "MISSING_FILE"
	// CodeDownloadFailed indicates an external fetch did not complete.
	CodeDownloadFailed Code = "DOWNLOAD_FAILED"
	// CodeSchemaMismatch indicates source data did not match the expected layout.
	CodeSchemaMismatch Code = "SCHEMA_MISMATCH"
	// CodeEmptyDataset indicates a source produced no usable records.
	CodeEmptyDataset Code = "EMPTY_DATASET"
	// CodeValidationFailed indicates the merged panel violated an invariant.
	CodeValidationFailed Code = "VALIDATION_FAILED"
	// CodeBadConfig indicates configuration could not be loaded or validated.
	CodeBadConfig Code = "BAD_CONFIG"
)

// PipelineError is a coded error with an optional wrapped cause.
type PipelineError struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches on the error code so callers can compare against sentinels.
func (e *PipelineError) Is(target error) bool {
	var pe *PipelineError
	if errors.As(target, &pe) {
		return e.Code == pe.Code
	}
	return false
}

// New creates a new PipelineError with the given code and message.
func New(code Code, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

// Newf creates a new PipelineError with a formatted message.
func Newf(code Code, format string, args ...any) *PipelineError {
	return &PipelineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new PipelineError wrapping a cause.
func Wrap(code Code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// HasCode reports whether err or any error in its chain carries the code.
func HasCode(err error, code Code) bool {
	var pe *PipelineError
	for errors.As(err, &pe) {
		if pe.Code == code {
			return true
		}
		err = pe.Err
		if err == nil {
			return false
		}
	}
	return false
}

// Helper constructors for the common failure scenarios.

// MissingFile reports a required input that must be supplied manually.
func MissingFile(path string) *PipelineError {
	return Newf(CodeMissingFile, "required file not found: %s", path)
}

// DownloadFailed reports a failed fetch from an external source.
func DownloadFailed(url string, err error) *PipelineError {
	return Wrap(CodeDownloadFailed, fmt.Sprintf("download failed: %s", url), err)
}

// SchemaMismatch reports source data that does not match the expected layout.
func SchemaMismatch(detail string) *PipelineError {
	return Newf(CodeSchemaMismatch, "unexpected data layout: %s", detail)
}

// EmptyDataset reports a source that produced no usable records.
func EmptyDataset(source string) *PipelineError {
	return Newf(CodeEmptyDataset, "no usable records from %s", source)
}

// ValidationFailed reports a violated panel invariant.
func ValidationFailed(detail string) *PipelineError {
	return Newf(CodeValidationFailed, "panel validation failed: %s", detail)
}
