package modelbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sleepstars/personachat/internal/clients"
	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/models"
)

// ModelBridge puts a deadline and logging around every upstream call
type ModelBridge struct {
	client  clients.ModelClient
	timeout time.Duration
	logger  *logger.Logger
}

// NewModelBridge creates a new model bridge instance. A zero timeout leaves
// the caller's context as the only bound.
func NewModelBridge(client clients.ModelClient, timeout time.Duration) *ModelBridge {
	log := logger.GetLogger().WithComponent("model_bridge")
	log.Info("Creating new model bridge with timeout %s", timeout)

	return &ModelBridge{
		client:  client,
		timeout: timeout,
		logger:  log,
	}
}

// Complete sends req to the upstream model
func (b *ModelBridge) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	b.logger.Debug("Calling model %s with %d messages", req.Model, len(req.Messages))

	resp, err := b.call(ctx, req)
	if err != nil {
		b.logger.WithError(err).Error("Model call failed after %s", time.Since(start))
		return nil, err
	}

	b.logger.Debug("Model call completed in %s", time.Since(start))
	return resp, nil
}

type result struct {
	resp *models.ChatCompletionResponse
	err  error
}

// call returns when the client does or when ctx ends, whichever is first,
// so a client that ignores its context cannot hold the request open.
func (b *ModelBridge) call(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("model client panic: %v", p)}
			}
		}()
		resp, err := b.client.Complete(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, &clients.TransportError{
			Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:     ctx.Err(),
		}
	}
}
