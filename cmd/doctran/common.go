package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/oukeidos/doctran/internal/auth"
	"github.com/oukeidos/doctran/internal/logger"
	"github.com/oukeidos/doctran/internal/pipeline"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	hasKey       = auth.HasKey
	promptForKey = auth.PromptForAPIKey
)

// resolveAPIKey finds the API key for a provider: keychain first, then
// environment (if allowed), then an interactive prompt.
func resolveAPIKey(provider string, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, source := getKey(provider, true); key != "" && source == "Environment Variable" {
			return key, source, nil
		}
		return "", "", fmt.Errorf("env-only set but %s_API_KEY is not set", strings.ToUpper(provider))
	}

	if key, source := getKey(provider, allowEnv); key != "" {
		return key, source, nil
	}

	if isTerminal(int(os.Stdin.Fd())) {
		name := "Gemini"
		if provider == "openai" {
			name = "OpenAI"
		}
		key, err := promptForKey(fmt.Sprintf("%s API Key (press Enter to skip): ", name))
		if err != nil {
			return "", "", fmt.Errorf("error reading API key: %w", err)
		}
		if strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), "Terminal Prompt", nil
		}
		if allowEnv {
			return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
		}
		return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
	}

	return "", "", fmt.Errorf("no API key available (non-interactive shell); set keychain or use --allow-env")
}

func printRunStats(result pipeline.Result, duration time.Duration, model string) {
	fmt.Println("\n--- Execution Stats ---")
	fmt.Printf("Time: %s\n", duration)
	fmt.Printf("Model: %s\n", model)
	if result.TokensUsed > 0 {
		fmt.Printf("Tokens: %d\n", result.TokensUsed)
		fmt.Printf("Cost: $%.5f\n", result.Cost)
	}
	if len(result.FailedPages) > 0 {
		fmt.Printf("Failed pages: %v\n", result.FailedPages)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("Cancellation requested")
		cancel()
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
