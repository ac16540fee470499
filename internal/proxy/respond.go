package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/models"
)

// Messages returned to callers. Nothing else about a failure is exposed.
const (
	MessageRequired     = "Message is required"
	InternalServerError = "Internal server error"
	RequestTooLarge     = "Request body too large"
)

// ValidationError means the caller's body did not carry a usable message
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid chat request: %s: %v", e.Reason, e.Err)
	}
	return "invalid chat request: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BodyTooLargeError means the request body exceeded the configured limit
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// StatusFor maps a pipeline error to the HTTP status and body sent to the
// caller. Every error that is not a caller mistake becomes a generic 500.
func StatusFor(err error) (int, models.ErrorPayload) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, models.ErrorPayload{Error: MessageRequired}
	}

	var tooLargeErr *BodyTooLargeError
	if errors.As(err, &tooLargeErr) {
		return http.StatusRequestEntityTooLarge, models.ErrorPayload{Error: RequestTooLarge}
	}

	return http.StatusInternalServerError, models.ErrorPayload{Error: InternalServerError}
}

// Handler answers chat requests using a ChatPipeline
type Handler struct {
	pipeline *ChatPipeline
}

// NewHandler creates a chat handler around pipeline
func NewHandler(pipeline *ChatPipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

// HandleChat runs rawBody through the pipeline and returns exactly one
// status/body pair: a models.ChatReply on success, a models.ErrorPayload
// otherwise.
func (h *Handler) HandleChat(ctx context.Context, rawBody []byte) (int, interface{}) {
	reply, err := h.pipeline.Execute(ctx, rawBody)
	if err == nil {
		return http.StatusOK, reply
	}
	return h.Fail(ctx, err)
}

// Fail logs err and maps it with StatusFor
func (h *Handler) Fail(ctx context.Context, err error) (int, interface{}) {
	status, body := StatusFor(err)

	log := logger.FromContext(ctx).WithComponent("chat_proxy").WithError(err)
	if status == http.StatusInternalServerError {
		log.Error("Error processing chat")
	} else {
		log.Info("Rejected chat request with status %d", status)
	}
	return status, body
}
