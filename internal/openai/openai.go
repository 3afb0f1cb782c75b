// Package openai implements the llm.Translator contract on top of the
// OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/oukeidos/doctran/internal/apperrors"
	"github.com/oukeidos/doctran/internal/cost"
	"github.com/oukeidos/doctran/internal/httpclient"
	"github.com/oukeidos/doctran/internal/llm"
)

// Client handles communication with the OpenAI API.
type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates an OpenAI-backed translator. baseURL overrides the API
// endpoint for compatible gateways; empty selects the default.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	cfg.HTTPClient = httpclient.GetDefaultClient()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Translate sends one unit to OpenAI and returns the translated text with
// usage accounting.
func (c *Client) Translate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	start := time.Now()

	userMessage := goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: llm.BuildPrompt(req),
	}
	if req.IsImage() {
		dataURL := fmt.Sprintf("data:%s;base64,%s",
			req.ContentType, base64.StdEncoding.EncodeToString(req.Image))
		userMessage = goopenai.ChatCompletionMessage{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{Type: goopenai.ChatMessagePartTypeText, Text: llm.BuildPrompt(req)},
				{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{URL: dataURL}},
			},
		}
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.SystemPrompt},
			userMessage,
		},
	}
	if req.ReasoningEffort != "" {
		chatReq.ReasoningEffort = req.ReasoningEffort
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, llm.NewTranslationError("openai returned no choices", nil)
	}

	return &llm.Response{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		TokensUsed: resp.Usage.TotalTokens,
		Cost:       cost.ForModel(c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		TimeTaken:  time.Since(start).Seconds(),
	}, nil
}

// ValidateModel probes whether the configured model is available to the
// current API key.
func (c *Client) ValidateModel(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		return false, classifyError(err)
	}
	return true, nil
}

var _ llm.Translator = (*Client)(nil)

func classifyError(err error) error {
	if err == nil {
		return nil
	}

	wrapped := fmt.Errorf("openai request failed: %w", err)

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return apperrors.New(apperrors.KindAuth, fmt.Sprintf("OpenAI authentication failed (%d).", apiErr.HTTPStatusCode), wrapped)
		case 404:
			return apperrors.New(apperrors.KindBadRequest, "OpenAI model not found (404).", wrapped)
		case 429:
			return apperrors.New(apperrors.KindRateLimit, "OpenAI rate limit exceeded (429). Please try again later.", wrapped)
		default:
			if apiErr.HTTPStatusCode >= 500 {
				return apperrors.New(apperrors.KindTransient, fmt.Sprintf("OpenAI service temporary error (%d). Please retry.", apiErr.HTTPStatusCode), wrapped)
			}
			return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("OpenAI API error (%d).", apiErr.HTTPStatusCode), wrapped)
		}
	}

	return apperrors.New(apperrors.KindTransient, "OpenAI request failed due to a temporary network error.", wrapped)
}
