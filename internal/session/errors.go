package session

import "fmt"

// ValidationError is raised before any remote call is made.
type ValidationError struct {
	Op      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(op, field, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Outcome tells the caller what an operation did. Only OutcomeFailed comes
// with a non-nil error.
type Outcome int

const (
	// OutcomeApplied means the response was recorded in the store.
	OutcomeApplied Outcome = iota
	// OutcomeUnchanged means the input matched the last commit and nothing was sent.
	OutcomeUnchanged
	// OutcomeBusy means another operation held the gate; the request was ignored.
	OutcomeBusy
	// OutcomeStale means the response arrived for a superseded state and was dropped.
	OutcomeStale
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeBusy:
		return "busy"
	case OutcomeStale:
		return "stale"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
