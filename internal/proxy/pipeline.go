package proxy

import (
	"context"
	"fmt"

	"github.com/sleepstars/personachat/internal/clients"
	"github.com/sleepstars/personachat/internal/config"
	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/models"
)

// Payload carries one chat request through the pipeline stages
type Payload struct {
	RawBody  []byte
	Message  string
	Upstream *models.ChatCompletionRequest
	Response *models.ChatCompletionResponse
	Reply    string

	decoded interface{}
}

// PipelineStage defines the interface for a stage in the chat pipeline
type PipelineStage interface {
	Execute(ctx context.Context, data *Payload) error
	Name() string
}

// ChatPipeline turns a raw {"message": ...} body into a model reply
type ChatPipeline struct {
	stages []PipelineStage
	logger *logger.Logger
}

// NewChatPipeline creates the chat pipeline. model is usually a
// *modelbridge.ModelBridge so that calls are bounded and logged.
func NewChatPipeline(cfg *config.Config, model clients.ModelClient) *ChatPipeline {
	log := logger.GetLogger().WithComponent("chat_pipeline")
	log.Info("Creating chat pipeline for model %s", cfg.Upstream.Model)

	return &ChatPipeline{
		logger: log,
		stages: []PipelineStage{
			decodeStage{},
			validateStage{},
			newBuildStage(cfg.Persona.Prompt, cfg.Upstream),
			upstreamStage{model: model},
			extractStage{},
		},
	}
}

// Execute runs the pipeline stages in sequence. The returned error wraps the
// failing stage's typed error.
func (p *ChatPipeline) Execute(ctx context.Context, rawBody []byte) (*models.ChatReply, error) {
	payload := &Payload{RawBody: rawBody}

	for _, stage := range p.stages {
		stageName := stage.Name()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("stage %s: %w", stageName, &clients.TransportError{Err: ctx.Err()})
		default:
		}

		if err := stage.Execute(ctx, payload); err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", stageName, err)
		}
		p.logger.Debug("Stage %s completed", stageName)
	}

	return &models.ChatReply{Reply: payload.Reply}, nil
}
