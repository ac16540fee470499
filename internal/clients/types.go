package clients

import (
	"context"

	"github.com/sleepstars/personachat/internal/models"
)

// ModelClient defines the interface for model API clients
type ModelClient interface {
	// Complete sends a completion request to the model
	Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error)
}

// ModelClientConfig contains configuration for model clients
type ModelClientConfig struct {
	APIBase string
	APIKey  string
	Model   string
}
