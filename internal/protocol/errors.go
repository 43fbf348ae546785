package protocol

import (
	"errors"
	"fmt"
)

// ErrMalformed marks a response that decoded but lacked required fields.
var ErrMalformed = errors.New("malformed response")

// Error is a failed remote operation: transport failure, a non-success
// status, or a payload that could not be understood. Message is the
// human-readable text shown to the operator.
type Error struct {
	Op         string // "initialize", "move", ...
	Message    string
	HTTPStatus int   // zero when no response was received
	Err        error // underlying cause, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Message extracts the operator-facing text from err.
func Message(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
