package mocks

import (
	"context"
	"sync/atomic"

	"github.com/sleepstars/personachat/internal/models"
)

// MockModelClient implements ModelClient interface for testing
type MockModelClient struct {
	CompleteFunc func(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error)

	calls atomic.Int32
}

func (m *MockModelClient) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	m.calls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &models.ChatCompletionResponse{}, nil
}

// Calls returns how many times Complete was invoked
func (m *MockModelClient) Calls() int {
	return int(m.calls.Load())
}

// Reply builds a single-choice completion response carrying content
func Reply(content string) *models.ChatCompletionResponse {
	return &models.ChatCompletionResponse{
		Choices: []models.ChatCompletionChoice{
			{
				Message: models.ChatCompletionMessage{
					Role:    models.RoleAssistant,
					Content: content,
				},
				FinishReason: "stop",
			},
		},
	}
}
