package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// UpstreamError means the completion API answered with a non-2xx status
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// TransportError means the completion API could not be reached or did not
// answer in time
type TransportError struct {
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("upstream timeout: %v", e.Err)
	}
	return fmt.Sprintf("upstream transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ReplyError means the completion API answered 2xx but the body did not
// carry a usable reply
type ReplyError struct {
	Reason string
	Err    error
}

func (e *ReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream reply: %s: %v", e.Reason, e.Err)
	}
	return "upstream reply: " + e.Reason
}

func (e *ReplyError) Unwrap() error { return e.Err }

// classify maps an error from the go-openai client onto the typed errors above
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ReplyError{Reason: "malformed body", Err: err}
	}

	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	return &TransportError{Timeout: timeout, Err: err}
}
