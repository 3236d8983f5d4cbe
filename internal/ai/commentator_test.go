package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/completecity/petryk/internal/ai"
	"github.com/stretchr/testify/assert"
)

func TestCommentatorOpinion(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var request struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens int `json:"max_tokens"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "gpt-4o-mini", request.Model)
		assert.Equal(t, 200, request.MaxTokens)
		assert.Len(t, request.Messages, 2)
		assert.Equal(t, "system", request.Messages[0].Role)
		assert.Contains(t, request.Messages[1].Content, `"note": "hello"`)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Wow, a note!  "}}]}`))
	}))
	defer llm.Close()

	commentator := ai.NewCommentator(llm.URL, "sk-test", "gpt-4o-mini")

	opinion, err := commentator.Opinion(context.Background(), map[string]any{"note": "hello"})
	assert.NoError(t, err)
	assert.Equal(t, "Wow, a note!", opinion)
}

func TestCommentatorDisabled(t *testing.T) {
	commentator := ai.NewCommentator("http://127.0.0.1:1", "", "gpt-4o-mini")

	opinion, err := commentator.Opinion(context.Background(), map[string]any{"note": "hello"})
	assert.NoError(t, err)
	assert.Equal(t, ai.Fallback, opinion)
}

func TestCommentatorUpstreamError(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer llm.Close()

	commentator := ai.NewCommentator(llm.URL, "sk-test", "gpt-4o-mini")

	_, err := commentator.Opinion(context.Background(), map[string]any{"note": "hello"})
	assert.Error(t, err)
}

func TestCommentatorEmptyChoices(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer llm.Close()

	commentator := ai.NewCommentator(llm.URL, "sk-test", "gpt-4o-mini")

	_, err := commentator.Opinion(context.Background(), map[string]any{"note": "hello"})
	assert.Error(t, err)
}
