// Package ai holds the model API clients used to react to submitted records.
// Every call is best effort, callers always have a defined fallback and never
// let a model outage block the primary write.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Fallback is the opinion used whenever the model could not be reached.
const Fallback = "Petryk is thinking about this..."

const persona = "You are Petryk, a curious and hyperactive bot who is learning about " +
	"the world through data people send you. You currently know nothing — " +
	"every piece of information is new and exciting to you. " +
	"Give your brief opinion or analysis of the data you just received " +
	"in 2-3 sentences. Be enthusiastic but insightful. Speak in first person."

type (
	// A Commentator asks a chat completion model for a short reaction on a record.
	Commentator struct {
		client  *http.Client
		baseURL string
		apiKey  string
		model   string
	}

	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model     string        `json:"model"`
		Messages  []chatMessage `json:"messages"`
		MaxTokens int           `json:"max_tokens"`
	}

	chatResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
)

// NewCommentator returns a Commentator against an OpenAI compatible API.
// An empty apiKey disables the client, Opinion then always returns Fallback.
func NewCommentator(baseURL, apiKey, model string) *Commentator {
	return &Commentator{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// Enabled returns true when an API key is configured.
func (c *Commentator) Enabled() bool {
	return c.apiKey != ""
}

// Opinion returns Petryk's reaction on the given record payload.
func (c *Commentator) Opinion(ctx context.Context, payload map[string]any) (string, error) {
	if !c.Enabled() {
		return Fallback, nil
	}

	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "could not serialize payload")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: persona},
			{Role: "user", Content: "I just received this data:\n\n" + string(serialized)},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return "", errors.Wrap(err, "could not serialize chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "could not build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "could not perform chat request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "could not read chat response")
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", errors.Errorf("chat response status %d: %s", resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errors.Wrap(err, "could not parse chat response")
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("empty chat choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
