// Package pipeline wires the full translation run together: input loading,
// cost pre-flight, provider selection, orchestration, and atomic output
// writing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oukeidos/doctran/internal/apperrors"
	"github.com/oukeidos/doctran/internal/cost"
	"github.com/oukeidos/doctran/internal/document"
	"github.com/oukeidos/doctran/internal/engine"
	"github.com/oukeidos/doctran/internal/files"
	"github.com/oukeidos/doctran/internal/gemini"
	"github.com/oukeidos/doctran/internal/language"
	"github.com/oukeidos/doctran/internal/llm"
	"github.com/oukeidos/doctran/internal/logger"
	"github.com/oukeidos/doctran/internal/memory"
	"github.com/oukeidos/doctran/internal/ollama"
	"github.com/oukeidos/doctran/internal/openai"
)

// Run executes the full translation pipeline.
func Run(ctx context.Context, cfg Config) (Result, error) {
	var notes []string
	cfg, notes = cfg.Normalize()
	for _, note := range notes {
		logger.Warn("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	absIn, err := filepath.Abs(cfg.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve input path: %w", err)
	}
	absOut, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve output path: %w", err)
	}
	if absIn == absOut {
		return Result{}, fmt.Errorf("input and output files are the same (%s)", absIn)
	}
	if err := files.RejectSymlinkPath(cfg.OutputPath); err != nil {
		return Result{}, err
	}

	shouldOverwrite := cfg.Overwrite
	outputExists := false
	if _, err := os.Stat(cfg.OutputPath); err == nil {
		outputExists = true
		if cfg.OnConfirmOverwrite != nil {
			shouldOverwrite = cfg.OnConfirmOverwrite(cfg.OutputPath)
		}
		if !shouldOverwrite {
			logger.Info("Output file exists. Aborted by user.", "path", cfg.OutputPath)
			return Result{Status: StatusSkipped}, nil
		}
		logger.Info("Overwriting output file", "path", cfg.OutputPath)
	}

	sourceLang, err := language.Normalize(orAuto(cfg.SourceLang))
	if err != nil {
		return Result{}, err
	}
	targetLang, err := language.Normalize(cfg.TargetLang)
	if err != nil {
		return Result{}, err
	}
	if sourceLang == targetLang {
		return Result{}, fmt.Errorf("source and target languages must be different (%s)", sourceLang)
	}

	content, err := document.Load(cfg.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load document: %w", err)
	}
	logger.Info("Loaded document",
		"path", cfg.InputPath,
		"units", len(content.Units),
		"content_type", content.ContentType,
	)

	estimate := preflight(content, cfg)
	for _, w := range estimate.Warnings {
		logger.Warn("Cost estimate", "warning", w)
	}
	if cfg.MaxCost > 0 && estimate.Cost > cfg.MaxCost && !cfg.Force {
		return Result{}, apperrors.New(apperrors.KindValidation,
			fmt.Sprintf("estimated cost ($%.2f) exceeds maximum ($%.2f); rerun with --force to proceed",
				estimate.Cost, cfg.MaxCost), nil)
	}

	translator, closeTranslator, err := newTranslator(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	defer closeTranslator()

	opts := engine.Options{OnProgress: cfg.OnProgress}
	if cfg.MemoryPath != "" {
		cache, err := memory.Open(cfg.MemoryPath)
		if err != nil {
			logger.Warn("Translation memory unavailable", "path", cfg.MemoryPath, "error", err)
		} else {
			defer cache.Close()
			opts.Memory = cache
		}
	}

	logger.Info("Starting translation",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"algorithm", cfg.Algorithm,
		"source", sourceLang,
		"target", targetLang,
	)

	resp, err := engine.TranslateDocument(ctx, content, engine.Config{
		SourceLang:          sourceLang,
		TargetLang:          targetLang,
		Model:               cfg.Model,
		Algorithm:           cfg.Algorithm,
		WindowSize:          cfg.WindowSize,
		OverlapSize:         cfg.OverlapSize,
		RepairSeams:         cfg.RepairSeams,
		SeamOverlap:         cfg.SeamOverlap,
		CheckpointDir:       cfg.CheckpointDir,
		CheckpointFrequency: cfg.CheckpointFrequency,
		Resume:              cfg.Resume,
		InputFile:           absIn,
		MaxCost:             cfg.MaxCost,
		Glossary:            cfg.Glossary,
		ReasoningEffort:     cfg.ReasoningEffort,
	}, translator, opts)
	if err != nil {
		return Result{Status: StatusFailure}, fmt.Errorf("translation failed: %w", err)
	}

	result := Result{
		Status:      StatusSuccess,
		TokensUsed:  resp.TokensUsed,
		Cost:        resp.Cost,
		TimeTaken:   resp.TimeTaken,
		FailedPages: resp.FailedPages,
		Warnings:    resp.Warnings,
	}
	if len(resp.FailedPages) > 0 {
		result.Status = StatusPartialSuccess
	}

	effectiveOutputPath := cfg.OutputPath
	if !(outputExists && shouldOverwrite) {
		safePath, changed, err := files.SafePath(cfg.OutputPath)
		if err != nil {
			return result, fmt.Errorf("failed to resolve output path: %w", err)
		}
		if changed {
			logger.Warn("Output path adjusted to avoid overwrite",
				"original", cfg.OutputPath, "effective", safePath)
			effectiveOutputPath = safePath
		}
	}

	if err := files.AtomicWrite(effectiveOutputPath, []byte(resp.Text), 0o644); err != nil {
		return result, fmt.Errorf("failed to save output file: %w", err)
	}
	result.OutputPath = effectiveOutputPath
	logger.Info("Saved results",
		"path", effectiveOutputPath,
		"tokens", resp.TokensUsed,
		"cost", resp.Cost,
	)
	return result, nil
}

// Estimate runs only the cost pre-flight for a document, without
// translating anything.
func Estimate(inputPath, provider string, maxCost float64) (cost.Estimate, error) {
	content, err := document.Load(inputPath)
	if err != nil {
		return cost.Estimate{}, fmt.Errorf("failed to load document: %w", err)
	}
	return preflight(content, Config{Provider: provider, MaxCost: maxCost}), nil
}

func preflight(content document.Content, cfg Config) cost.Estimate {
	tokens := 0
	imagePages := 0
	for _, u := range content.Units {
		if u.IsImage() {
			imagePages++
		} else {
			tokens += cost.EstimateTextTokens(u.Text)
		}
	}
	tokens += cost.EstimateImageTokens(imagePages)
	return cost.EstimateRun(cfg.Provider, tokens, cfg.MaxCost)
}

func newTranslator(ctx context.Context, cfg Config) (llm.Translator, func(), error) {
	switch cfg.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, func() { client.Close() }, nil
	case "openai":
		return openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL), func() {}, nil
	case "ollama":
		return ollama.NewClient(cfg.BaseURL, cfg.Model), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func orAuto(code string) string {
	if code == "" {
		return language.Auto
	}
	return code
}
