// Package gemini implements the llm.Translator contract on top of the
// Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/oukeidos/doctran/internal/cost"
	"github.com/oukeidos/doctran/internal/httpclient"
	"github.com/oukeidos/doctran/internal/llm"
)

// Client handles communication with the Gemini API.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient creates a Gemini-backed translator.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	// option.WithHTTPClient interferes with the genai library's header
	// injection for API keys; timeouts are enforced per request via context
	// instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.SystemPrompt)},
	}

	return &Client{
		client:    client,
		model:     model,
		modelName: modelName,
	}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Translate sends one unit to Gemini and returns the translated text with
// usage accounting.
func (c *Client) Translate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	start := time.Now()

	parts := []genai.Part{genai.Text(llm.BuildPrompt(req))}
	if req.IsImage() {
		format := strings.TrimPrefix(req.ContentType, "image/")
		parts = append(parts, genai.ImageData(format, req.Image))
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, classifyError(err)
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return nil, llm.NewTranslationError("gemini returned no usable response", err)
	}

	out := &llm.Response{
		Text:      strings.TrimSpace(text),
		TimeTaken: time.Since(start).Seconds(),
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
		out.Cost = cost.ForModel(c.modelName,
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount))
	}
	return out, nil
}

// ValidateModel probes whether the configured model exists and is
// accessible with the current credentials.
func (c *Client) ValidateModel(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := c.model.Info(ctx); err != nil {
		return false, classifyError(err)
	}
	return true, nil
}

var _ llm.Translator = (*Client)(nil)

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var combined string
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			combined += string(text)
		}
		if combined != "" {
			return combined, nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
