package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/at-ishikawa/lessoncraft/internal/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func newTestClient(serverURL string) *Client {
	return &Client{
		httpClient:       resty.New().SetBaseURL(serverURL),
		model:            "gpt-4o-mini",
		imageModel:       "dall-e-3",
		maxRetryAttempts: 1,
	}
}

func completionResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "gpt-4o-mini",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
		Usage: Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name              string
		request           inference.CompletionRequest
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantResponse    string
		wantError       bool
		wantErrorString string
		wantRefusal     bool
	}{
		{
			name: "success returns assistant content",
			request: inference.CompletionRequest{
				Prompt:      "Generate a lesson about city life.",
				Temperature: 0.7,
				MaxTokens:   4000,
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				assert.Equal(t, float32(0.7), reqBody.Temperature)
				assert.Equal(t, 4000, reqBody.MaxTokens)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, RoleSystem, reqBody.Messages[0].Role)
				assert.Equal(t, RoleUser, reqBody.Messages[1].Role)
				assert.Contains(t, reqBody.Messages[1].Content, "city life")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(completionResponse(`{"title": "City Life"}`)))
			},
			wantResponse: `{"title": "City Life"}`,
		},
		{
			name:    "HTTP 500 error",
			request: inference.CompletionRequest{Prompt: "Generate a lesson."},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error": {"message": "Internal server error"}}`))
			},
			wantError:       true,
			wantErrorString: "response error 5",
		},
		{
			name:    "empty choices",
			request: inference.CompletionRequest{Prompt: "Generate a lesson."},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(ChatCompletionResponse{ID: "chatcmpl-456"}))
			},
			wantError:       true,
			wantErrorString: "empty response body or choices",
		},
		{
			name:    "policy refusal in the error body",
			request: inference.CompletionRequest{Prompt: "Generate a lesson."},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error": {"message": "Your request was rejected: content_policy_violation"}}`))
			},
			wantError:   true,
			wantRefusal: true,
		},
		{
			name:    "policy refusal in the assistant content",
			request: inference.CompletionRequest{Prompt: "Generate a lesson."},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				require.NoError(t, json.NewEncoder(w).Encode(completionResponse("I'm unable to help with that topic.")))
			},
			wantError:   true,
			wantRefusal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			gotResponse, gotErr := client.Complete(context.Background(), tt.request)

			if tt.wantError {
				require.Error(t, gotErr)
				if tt.wantErrorString != "" {
					assert.Contains(t, gotErr.Error(), tt.wantErrorString)
				}
				if tt.wantRefusal {
					assert.True(t, inference.IsRefusalError(gotErr))
				}
				return
			}

			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantResponse, gotResponse)
		})
	}
}

func TestClient_Complete_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "upstream unavailable"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(completionResponse(`{"title": "City Life"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Complete(context.Background(), inference.CompletionRequest{Prompt: "Generate a lesson."})

	require.NoError(t, err)
	assert.Equal(t, `{"title": "City Life"}`, got)
	assert.Equal(t, 2, calls)
}
