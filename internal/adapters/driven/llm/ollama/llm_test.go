package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

func TestLLMService_Generate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "Section 302 applies.", Done: true})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL + "/"})
	text, err := svc.Generate(context.Background(), "what applies?", driven.GenerateOptions{
		MaxTokens: 2048, Temperature: 0.2, TopP: 0.8, TopK: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, "Section 302 applies.", text)
	assert.Equal(t, DefaultLLMModel, got.Model)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 2048, got.Options.NumPredict)
	assert.InDelta(t, 0.8, got.Options.TopP, 1e-9)
	assert.Equal(t, 40, got.Options.TopK)
}

func TestLLMService_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `model not found`, nil},
		{"blank completion", http.StatusOK, `{"response":"  ","done":true}`, domain.ErrEmptyCompletion},
		{"bad json", http.StatusOK, `{`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Generate(context.Background(), "p", driven.GenerateOptions{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, "mistral", svc.ModelName())
	assert.NoError(t, svc.Close())
}
