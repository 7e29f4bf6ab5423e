package engine

import (
	"errors"
	"fmt"
	"strings"

	"resume-intel/internal/shared/apperr"
)

var (
	// ErrUnavailable covers transport failures, timeouts and upstream
	// outages. It is the only class worth retrying.
	ErrUnavailable = fmt.Errorf("engine: %w", apperr.ErrEngineUnavailable)
	// ErrRejected means the engine answered with a structured failure or a
	// reply that could not be used.
	ErrRejected = fmt.Errorf("engine: %w", apperr.ErrEngineRejected)
)

// Error describes a failed engine call.
type Error struct {
	Op         string
	Kind       error // ErrUnavailable or ErrRejected
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("engine ")
	b.WriteString(e.Op)
	if errors.Is(e.Kind, ErrRejected) {
		b.WriteString(": rejected")
	} else {
		b.WriteString(": unavailable")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := []error{e.Kind}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Unavailable builds an ErrUnavailable error for op.
func Unavailable(op string, status int, cause error) error {
	return &Error{Op: op, Kind: ErrUnavailable, StatusCode: status, Err: cause}
}

// Rejected builds an ErrRejected error for op carrying the engine's message.
func Rejected(op string, status int, message string) error {
	return &Error{Op: op, Kind: ErrRejected, StatusCode: status, Message: message}
}

// IsUnavailable reports whether err is a transient engine failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
