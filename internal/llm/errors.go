package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse means the model answered successfully but without content.
var ErrEmptyResponse = errors.New("model returned an empty response")

// TransportError is a non-success HTTP status from the model endpoint.
type TransportError struct {
	Op     string
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s request failed (%d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s request failed (%d): %s", e.Op, e.Status, e.Body)
}

// ParseError is model output that is not valid JSON.
type ParseError struct {
	Context string
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v. Snippet: %s", e.Context, e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }
