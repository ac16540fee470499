package clients

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sleepstars/personachat/internal/models"
)

// OpenAIClient implements ModelClient against an OpenAI-compatible
// chat completion endpoint
type OpenAIClient struct {
	config ModelClientConfig
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI-compatible model client
func NewOpenAIClient(config ModelClientConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.APIBase != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.APIBase, "/")
	}
	if !strings.HasPrefix(clientConfig.BaseURL, "http://") && !strings.HasPrefix(clientConfig.BaseURL, "https://") {
		clientConfig.BaseURL = "https://" + clientConfig.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &statusTransport{next: http.DefaultTransport},
	}

	return &OpenAIClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for i, msg := range req.Messages {
		openaiReq.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	status := new(atomic.Int32)
	resp, err := c.client.CreateChatCompletion(withStatusRecorder(ctx, status), openaiReq)
	if err != nil {
		classified := classify(err)
		// Non-JSON error bodies come back from go-openai as plain errors;
		// the recorded status still identifies them as upstream failures.
		if _, isTransport := classified.(*TransportError); isTransport {
			if code := int(status.Load()); code != 0 && !isSuccess(code) {
				return nil, &UpstreamError{StatusCode: code, Err: err}
			}
		}
		return nil, classified
	}
	// go-openai only fails on statuses >= 400, so a decodable 1xx/3xx body
	// lands here.
	if code := int(status.Load()); code != 0 && !isSuccess(code) {
		return nil, &UpstreamError{StatusCode: code}
	}

	if len(resp.Choices) == 0 {
		return nil, &ReplyError{Reason: "no choices in response"}
	}

	result := &models.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  resp.Object,
		Created: resp.Created,
		Model:   resp.Model,
		Choices: make([]models.ChatCompletionChoice, len(resp.Choices)),
	}
	for i, choice := range resp.Choices {
		result.Choices[i] = models.ChatCompletionChoice{
			Index: choice.Index,
			Message: models.ChatCompletionMessage{
				Role:    choice.Message.Role,
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		}
	}
	return result, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}

type statusKey struct{}

func withStatusRecorder(ctx context.Context, status *atomic.Int32) context.Context {
	return context.WithValue(ctx, statusKey{}, status)
}

// statusTransport records the upstream HTTP status into the recorder carried
// by the request context
type statusTransport struct {
	next http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if status, ok := req.Context().Value(statusKey{}).(*atomic.Int32); ok {
		status.Store(int32(resp.StatusCode))
	}
	return resp, nil
}
