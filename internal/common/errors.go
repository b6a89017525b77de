// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound        = errors.New("not found")
	ErrCorruptArtifact = errors.New("model artifact corrupted")
	ErrMissingColumn   = errors.New("missing required column")

	// Pipeline input errors.
	ErrEmptyCorpus  = errors.New("corpus is empty")
	ErrNoFeatures   = errors.New("no feature columns")
	ErrZeroVariance = errors.New("all feature columns are zero")
	ErrRowMismatch  = errors.New("feature and label row counts differ")
	ErrNoOverlap    = errors.New("no overlapping documents")

	// Classification errors.
	ErrUnknownAxis     = errors.New("unknown classification axis")
	ErrUnknownCategory = errors.New("unknown category")
	ErrModelNotTrained = errors.New("model not trained")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StageError identifies which axis and pipeline stage an error came from, so
// a failed training run reads "country: fit: ..." rather than a bare message.
type StageError struct {
	Err   error
	Axis  string
	Stage string
}

func (e *StageError) Error() string {
	if e.Axis == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Axis, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Stage wraps err with axis and stage context. Returns nil when err is nil
// so call sites can wrap unconditionally.
func Stage(axis, stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Axis: axis, Stage: stage, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
