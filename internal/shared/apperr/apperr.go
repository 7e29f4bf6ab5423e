package apperr

import (
	"errors"
	"fmt"
)

// Error kinds shared across features. Feature sentinels wrap these.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrEngineUnavailable = errors.New("analysis engine unavailable")
	ErrEngineRejected    = errors.New("analysis engine rejected request")
	ErrPersistence       = errors.New("persistence error")
)

// Stage names a step of a pipeline.
type Stage string

const (
	StageValidation Stage = "validation"
	StageExtraction Stage = "extraction"
	StageParse      Stage = "parse"
	StageRecommend  Stage = "recommend"
	StageSkillGap   Stage = "skill_gap"
	StageChat       Stage = "chat"
	StageInterview  Stage = "interview"
	StageStorage    Stage = "storage"
	StagePersist    Stage = "persist"
	StageLookup     Stage = "lookup"
)

// StageError records the pipeline stage at which Err happened.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// AtStage wraps err with stage information. A nil err stays nil.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// Validation builds a validation error with the given message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Persistence wraps a storage driver error.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// Code returns the public error code for err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnsupportedFormat):
		return "UNSUPPORTED_FORMAT"
	case errors.Is(err, ErrCorruptDocument):
		return "CORRUPT_DOCUMENT"
	case errors.Is(err, ErrEngineUnavailable):
		return "ENGINE_UNAVAILABLE"
	case errors.Is(err, ErrEngineRejected):
		return "ENGINE_REJECTED"
	case errors.Is(err, ErrPersistence):
		return "STORAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// IsNotFound reports whether err is a not-found error of any feature.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
