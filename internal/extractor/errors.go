package extractor

import "fmt"

// ErrorKind classifies why extraction produced no intent
type ErrorKind string

const (
	KindPrompt        ErrorKind = "prompt"
	KindCompletion    ErrorKind = "completion"
	KindNoJSON        ErrorKind = "no-json"
	KindMalformed     ErrorKind = "malformed"
	KindMissingTag    ErrorKind = "missing-tag"
	KindInvalidFields ErrorKind = "invalid-fields"
)

// Error is returned by Extract. Callers treat every Error as
// "extraction unavailable" and fall back to their own handling.
type Error struct {
	Kind ErrorKind
	Raw  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract intent: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
