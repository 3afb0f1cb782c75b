// Package ollama implements the llm.Translator contract against a local
// Ollama server. Local models are free, so responses carry token counts but
// no cost.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oukeidos/doctran/internal/apperrors"
	"github.com/oukeidos/doctran/internal/httpclient"
	"github.com/oukeidos/doctran/internal/llm"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Client handles communication with an Ollama server.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates an Ollama-backed translator. An empty baseURL selects
// the local default.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  httpclient.GetDefaultClient(),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Translate sends one unit to the local model.
func (c *Client) Translate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if req.IsImage() {
		return nil, apperrors.New(apperrors.KindBadRequest,
			"image translation is not supported with Ollama models", nil)
	}

	start := time.Now()

	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: llm.SystemPrompt,
		Prompt: llm.BuildPrompt(req),
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, resp, err := httpclient.DoAndRead(c.client, httpReq)
	if err != nil {
		return nil, apperrors.New(apperrors.KindTransient,
			"Ollama request failed. Is the server running?", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, llm.NewTranslationError("failed to decode ollama response", err)
	}

	return &llm.Response{
		Text:       strings.TrimSpace(out.Response),
		TokensUsed: out.PromptEvalCount + out.EvalCount,
		TimeTaken:  time.Since(start).Seconds(),
	}, nil
}

// ValidateModel checks that the server is reachable and lists the
// configured model.
func (c *Client) ValidateModel(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false, err
	}

	body, resp, err := httpclient.DoAndRead(c.client, httpReq)
	if err != nil {
		return false, apperrors.New(apperrors.KindTransient,
			"Ollama is not reachable. Is the server running?", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, classifyStatus(resp.StatusCode, body)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &tags); err != nil {
		return false, llm.NewTranslationError("failed to decode ollama model list", err)
	}

	for _, m := range tags.Models {
		if m.Name == c.model || strings.TrimSuffix(m.Name, ":latest") == c.model {
			return true, nil
		}
	}
	return false, nil
}

var _ llm.Translator = (*Client)(nil)

func classifyStatus(status int, body []byte) error {
	cause := fmt.Errorf("ollama returned status %d: %s", status, strings.TrimSpace(string(body)))
	switch {
	case status == 404:
		return apperrors.New(apperrors.KindBadRequest, "Ollama model not found. Pull it first with `ollama pull`.", cause)
	case status == 429:
		return apperrors.New(apperrors.KindRateLimit, "Ollama server is overloaded.", cause)
	case status >= 500:
		return apperrors.New(apperrors.KindTransient, fmt.Sprintf("Ollama server error (%d).", status), cause)
	default:
		return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("Ollama request rejected (%d).", status), cause)
	}
}
