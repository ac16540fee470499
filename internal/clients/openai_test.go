package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sleepstars/personachat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest() *models.ChatCompletionRequest {
	return &models.ChatCompletionRequest{
		Messages: []models.ChatCompletionMessage{
			{Role: models.RoleSystem, Content: "persona"},
			{Role: models.RoleUser, Content: "hello"},
		},
		Temperature: 0.9,
		MaxTokens:   600,
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request method, path and credential
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.InDelta(t, 0.9, body["temperature"], 1e-6)
		assert.Equal(t, float64(600), body["max_tokens"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 2)
		assert.Equal(t, map[string]interface{}{"role": "system", "content": "persona"}, messages[0])
		assert.Equal(t, map[string]interface{}{"role": "user", "content": "hello"}, messages[1])

		writeJSON(w, http.StatusOK, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "こんにちは"}, "finish_reason": "stop"}]
		}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(ModelClientConfig{
		APIBase: server.URL + "/v1",
		APIKey:  "sk-test",
		Model:   "test-model",
	})

	resp, err := client.Complete(context.Background(), newTestRequest())
	require.NoError(t, err)

	content, ok := resp.FirstContent()
	assert.True(t, ok)
	assert.Equal(t, "こんにちは", content)
	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
}

func TestOpenAIClient_CompleteErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "JSON error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`)
			},
			check: func(t *testing.T, err error) {
				var upstreamErr *UpstreamError
				require.True(t, errors.As(err, &upstreamErr), "got %T: %v", err, err)
				assert.Equal(t, http.StatusServiceUnavailable, upstreamErr.StatusCode)
			},
		},
		{
			name: "Unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
			},
			check: func(t *testing.T, err error) {
				var upstreamErr *UpstreamError
				require.True(t, errors.As(err, &upstreamErr), "got %T: %v", err, err)
				assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
			},
		},
		{
			name: "Plain text error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("bad gateway"))
			},
			check: func(t *testing.T, err error) {
				var upstreamErr *UpstreamError
				require.True(t, errors.As(err, &upstreamErr), "got %T: %v", err, err)
				assert.Equal(t, http.StatusBadGateway, upstreamErr.StatusCode)
			},
		},
		{
			name: "Status 300 with a decodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusMultipleChoices, `{"choices":[{"message":{"content":"leaked"}}]}`)
			},
			check: func(t *testing.T, err error) {
				var upstreamErr *UpstreamError
				require.True(t, errors.As(err, &upstreamErr), "got %T: %v", err, err)
				assert.Equal(t, http.StatusMultipleChoices, upstreamErr.StatusCode)
			},
		},
		{
			name: "Status 399 with a decodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 399, `{"choices":[{"message":{"content":"leaked"}}]}`)
			},
			check: func(t *testing.T, err error) {
				var upstreamErr *UpstreamError
				require.True(t, errors.As(err, &upstreamErr), "got %T: %v", err, err)
				assert.Equal(t, 399, upstreamErr.StatusCode)
			},
		},
		{
			name: "Malformed success body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `not json`)
			},
			check: func(t *testing.T, err error) {
				var replyErr *ReplyError
				assert.True(t, errors.As(err, &replyErr), "got %T: %v", err, err)
			},
		},
		{
			name: "No choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"choices":[]}`)
			},
			check: func(t *testing.T, err error) {
				var replyErr *ReplyError
				require.True(t, errors.As(err, &replyErr), "got %T: %v", err, err)
				assert.Equal(t, "no choices in response", replyErr.Reason)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewOpenAIClient(ModelClientConfig{APIBase: server.URL, APIKey: "sk-test", Model: "m"})
			resp, err := client.Complete(context.Background(), newTestRequest())
			assert.Nil(t, resp)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestOpenAIClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewOpenAIClient(ModelClientConfig{APIBase: url, APIKey: "sk-test", Model: "m"})
	_, err := client.Complete(context.Background(), newTestRequest())

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %T: %v", err, err)
	assert.False(t, transportErr.Timeout)
}

func TestOpenAIClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewOpenAIClient(ModelClientConfig{APIBase: server.URL, APIKey: "sk-test", Model: "m"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, newTestRequest())

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %T: %v", err, err)
	assert.True(t, transportErr.Timeout)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestOpenAIClient_DefaultsModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "configured-model", body["model"])
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(ModelClientConfig{APIBase: server.URL, APIKey: "k", Model: "configured-model"})
	req := newTestRequest()
	_, err := client.Complete(context.Background(), req)
	assert.NoError(t, err)
	assert.Empty(t, req.Model, "caller's request is left untouched")
}
