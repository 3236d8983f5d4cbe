package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Formats accepted for uploaded images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
)

const describePrompt = "Describe this image in detail in 50 characters"

type (
	// A Describer asks a vision model for a short description of an image.
	Describer struct {
		client  *http.Client
		baseURL string
		apiKey  string
		model   string
	}

	generateRequest struct {
		Contents []generateContent `json:"contents"`
	}

	generateContent struct {
		Parts []generatePart `json:"parts"`
	}

	generatePart struct {
		Text       string      `json:"text,omitempty"`
		InlineData *inlineData `json:"inline_data,omitempty"`
	}

	inlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}

	generateResponse struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

// NewDescriber returns a Describer against the Gemini generateContent API.
// An empty apiKey disables the client, Describe then always returns "".
func NewDescriber(baseURL, apiKey, model string) *Describer {
	return &Describer{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// Enabled returns true when an API key is configured.
func (d *Describer) Enabled() bool {
	return d.apiKey != ""
}

// Describe returns a short description of the given image bytes.
func (d *Describer) Describe(ctx context.Context, img []byte, mime string) (string, error) {
	if !d.Enabled() {
		return "", nil
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(img)); err != nil {
		return "", errors.Wrap(err, "could not decode image")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{
				{Text: describePrompt},
				{InlineData: &inlineData{
					MimeType: mime,
					Data:     base64.StdEncoding.EncodeToString(img),
				}},
			},
		}},
	})
	if err != nil {
		return "", errors.Wrap(err, "could not serialize generate request")
	}

	url := d.baseURL + "/v1beta/models/" + d.model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "could not build generate request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "could not perform generate request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "could not read generate response")
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", errors.Errorf("generate response status %d: %s", resp.StatusCode, raw)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", errors.Wrap(err, "could not parse generate response")
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("empty generate candidates")
	}

	var description strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		description.WriteString(part.Text)
	}
	return strings.TrimSpace(description.String()), nil
}
