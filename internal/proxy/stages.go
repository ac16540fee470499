package proxy

import (
	"context"
	"encoding/json"

	"github.com/sleepstars/personachat/internal/clients"
	"github.com/sleepstars/personachat/internal/config"
	"github.com/sleepstars/personachat/internal/models"
)

// decodeStage parses the raw body as a JSON object
type decodeStage struct{}

func (decodeStage) Name() string { return "decode_request" }

func (decodeStage) Execute(ctx context.Context, data *Payload) error {
	var body struct {
		Message interface{} `json:"message"`
	}
	if err := json.Unmarshal(data.RawBody, &body); err != nil {
		return &ValidationError{Reason: "malformed JSON body", Err: err}
	}
	data.decoded = body.Message
	return nil
}

// validateStage requires message to be a non-empty string
type validateStage struct{}

func (validateStage) Name() string { return "validate_message" }

func (validateStage) Execute(ctx context.Context, data *Payload) error {
	switch msg := data.decoded.(type) {
	case nil:
		return &ValidationError{Reason: "message is missing"}
	case string:
		if msg == "" {
			return &ValidationError{Reason: "message is empty"}
		}
		data.Message = msg
		return nil
	default:
		return &ValidationError{Reason: "message is not a string"}
	}
}

// buildStage wraps the user message in the persona prompt and the
// configured generation parameters
type buildStage struct {
	persona     string
	model       string
	temperature float32
	maxTokens   int
}

func newBuildStage(persona string, upstream config.UpstreamConfig) buildStage {
	return buildStage{
		persona:     persona,
		model:       upstream.Model,
		temperature: upstream.Temperature,
		maxTokens:   upstream.MaxTokens,
	}
}

func (buildStage) Name() string { return "build_upstream_request" }

func (s buildStage) Execute(ctx context.Context, data *Payload) error {
	messages := make([]models.ChatCompletionMessage, 0, 2)
	if s.persona != "" {
		messages = append(messages, models.ChatCompletionMessage{Role: models.RoleSystem, Content: s.persona})
	}
	messages = append(messages, models.ChatCompletionMessage{Role: models.RoleUser, Content: data.Message})

	data.Upstream = &models.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}
	return nil
}

// upstreamStage sends the built request to the model
type upstreamStage struct {
	model clients.ModelClient
}

func (upstreamStage) Name() string { return "call_upstream" }

func (s upstreamStage) Execute(ctx context.Context, data *Payload) error {
	resp, err := s.model.Complete(ctx, data.Upstream)
	if err != nil {
		return err
	}
	data.Response = resp
	return nil
}

// extractStage pulls the first choice's content out of the response
type extractStage struct{}

func (extractStage) Name() string { return "extract_reply" }

func (extractStage) Execute(ctx context.Context, data *Payload) error {
	content, ok := data.Response.FirstContent()
	if !ok {
		return &clients.ReplyError{Reason: "no choices in response"}
	}
	data.Reply = content
	return nil
}
