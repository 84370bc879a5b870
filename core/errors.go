package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks a scenario that cannot be read. The run is
	// aborted and nothing is emitted.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnknownKind marks a scenario line whose entity kind is not user, sat
	// or interferer.
	ErrUnknownKind = fmt.Errorf("%w: unknown entity kind", ErrMalformedInput)
	// ErrInvariantViolation marks an internal logic defect detected while
	// planning, such as committing a beam to a full satellite.
	ErrInvariantViolation = errors.New("planner invariant violated")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid planner config")
)

// ParseError describes the scenario line that stopped a load.
type ParseError struct {
	Line    int    // 1-based line number
	Content string // raw line text
	Reason  string
	Err     error // ErrMalformedInput or ErrUnknownKind
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Content)
}

func (e *ParseError) Unwrap() error {
	if e.Err == nil {
		return ErrMalformedInput
	}
	return e.Err
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
