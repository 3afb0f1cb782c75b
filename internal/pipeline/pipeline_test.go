package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/doctran/internal/engine"
)

// newOllamaStub serves the two endpoints the local provider uses, returning
// each prompt's final line prefixed with "T:".
func newOllamaStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
		case "/api/generate":
			var req struct {
				Prompt string `json:"prompt"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			lines := strings.Split(strings.TrimSpace(req.Prompt), "\n")
			text := lines[len(lines)-1]
			json.NewEncoder(w).Encode(map[string]any{
				"response":          "T:" + text,
				"prompt_eval_count": 10,
				"eval_count":        5,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	server := newOllamaStub(t)
	input := writeInput(t, dir, "first paragraph\n\nsecond paragraph")
	output := filepath.Join(dir, "output.txt")

	result, err := Run(context.Background(), Config{
		InputPath:  input,
		OutputPath: output,
		Provider:   "ollama",
		Model:      "llama3.2",
		BaseURL:    server.URL,
		SourceLang: "en",
		TargetLang: "fr",
		Algorithm:  engine.AlgorithmPage,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Status != StatusSuccess {
		t.Errorf("Status = %v, want success", result.Status)
	}
	if result.OutputPath != output {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, output)
	}
	if result.TokensUsed != 30 {
		t.Errorf("TokensUsed = %d, want 30", result.TokensUsed)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "T:first paragraph\n\nT:second paragraph" {
		t.Errorf("output = %q", data)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown provider", Config{Provider: "aws", Model: "m", TargetLang: "fr"}},
		{"missing model", Config{Provider: "ollama", TargetLang: "fr"}},
		{"missing target", Config{Provider: "ollama", Model: "m"}},
		{"missing api key", Config{Provider: "openai", Model: "m", TargetLang: "fr"}},
		{"overlap too large", Config{
			Provider: "ollama", Model: "m", TargetLang: "fr",
			Algorithm: engine.AlgorithmSlidingWindow, WindowSize: 10, OverlapSize: 10,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected a configuration error")
			}
		})
	}
}

func TestRunRejectsSameInputOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "text")

	_, err := Run(context.Background(), Config{
		InputPath:  input,
		OutputPath: input,
		Provider:   "ollama",
		Model:      "llama3.2",
		TargetLang: "fr",
	})
	if err == nil || !strings.Contains(err.Error(), "same") {
		t.Errorf("err = %v, want same-file rejection", err)
	}
}

func TestRunSkipsWhenOverwriteDeclined(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "text")
	output := filepath.Join(dir, "output.txt")
	if err := os.WriteFile(output, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Run(context.Background(), Config{
		InputPath:          input,
		OutputPath:         output,
		Provider:           "ollama",
		Model:              "llama3.2",
		TargetLang:         "fr",
		OnConfirmOverwrite: func(string) bool { return false },
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Status != StatusSkipped {
		t.Errorf("Status = %v, want skipped", result.Status)
	}

	data, _ := os.ReadFile(output)
	if string(data) != "existing" {
		t.Error("declined overwrite must leave the file untouched")
	}
}

func TestRunMaxCostPreflight(t *testing.T) {
	dir := t.TempDir()
	// Large enough that the openai estimate exceeds one cent.
	input := writeInput(t, dir, strings.Repeat("word ", 5000))
	output := filepath.Join(dir, "output.txt")

	_, err := Run(context.Background(), Config{
		InputPath:  input,
		OutputPath: output,
		Provider:   "openai",
		Model:      "gpt-5",
		APIKey:     "test-key",
		TargetLang: "fr",
		MaxCost:    0.0001,
	})
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("err = %v, want cost pre-flight rejection", err)
	}
}

func TestEstimate(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, strings.Repeat("abcd", 1000))

	est, err := Estimate(input, "openai", 0)
	if err != nil {
		t.Fatalf("Estimate() error: %v", err)
	}
	if est.Tokens != 1000 {
		t.Errorf("Tokens = %d, want 1000", est.Tokens)
	}
	if est.Cost <= 0 {
		t.Errorf("Cost = %v, want positive for a cloud provider", est.Cost)
	}
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg, notes := Config{}.Normalize()
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Algorithm != engine.AlgorithmPage {
		t.Errorf("Algorithm = %q, want page", cfg.Algorithm)
	}
	if len(notes) != 2 {
		t.Errorf("notes = %v", notes)
	}
}
