package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oukeidos/doctran/internal/cleanup"
	"github.com/oukeidos/doctran/internal/engine"
	"github.com/oukeidos/doctran/internal/files"
	"github.com/oukeidos/doctran/internal/logger"
	"github.com/oukeidos/doctran/internal/pipeline"
	"github.com/oukeidos/doctran/internal/prompt"
)

type translateOptions struct {
	configFile string

	provider        string
	modelName       string
	baseURL         string
	sourceLang      string
	targetLang      string
	algorithm       string
	windowSize      int
	overlapSize     int
	repairSeams     bool
	seamOverlap     int
	checkpointDir   string
	checkpointFreq  int
	resume          bool
	maxCost         float64
	force           bool
	glossaryPath    string
	memoryPath      string
	reasoningEffort string
	yes             bool
	logFilePath     string
	allowEnv        bool
	envOnly         bool
	debug           bool
}

func newTranslateCmd() *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate <input> <output>",
		Short: "Translate a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				_ = cmd.Usage()
				return fmt.Errorf("input and output files are required")
			}
			return runTranslate(cmd, args, &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	return cmd
}

func addTranslateFlags(cmd *cobra.Command, opts *translateOptions) {
	cmd.Flags().StringVar(&opts.provider, "provider", "gemini", "Model provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&opts.modelName, "model", "", "Model name (defaults per provider)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Custom API endpoint (openai-compatible gateways, ollama)")
	cmd.Flags().StringVar(&opts.sourceLang, "source", "auto", "Source language code, or auto to detect")
	cmd.Flags().StringVar(&opts.targetLang, "target", "", "Target language code (required)")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", engine.AlgorithmPage, "Translation algorithm (page or sliding-window)")
	cmd.Flags().IntVar(&opts.windowSize, "window-size", 0, "Sliding window size in characters (0 = default)")
	cmd.Flags().IntVar(&opts.overlapSize, "overlap-size", 0, "Sliding window overlap in characters (0 = default)")
	cmd.Flags().BoolVar(&opts.repairSeams, "repair-seams", false, "Deduplicate overlapping text at page boundaries")
	cmd.Flags().IntVar(&opts.seamOverlap, "seam-overlap", 0, "Seam search span in characters (0 = default)")
	cmd.Flags().StringVar(&opts.checkpointDir, "checkpoint-dir", "", "Directory for resumable checkpoints (empty disables)")
	cmd.Flags().IntVar(&opts.checkpointFreq, "checkpoint-frequency", 1, "Save a checkpoint every N translated units")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Resume from an existing checkpoint")
	cmd.Flags().Float64Var(&opts.maxCost, "max-cost", 0, "Maximum cost in USD (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Proceed even when the cost estimate exceeds --max-cost")
	cmd.Flags().StringVar(&opts.glossaryPath, "glossary", "", "Path to glossary JSON file (term -> translation)")
	cmd.Flags().StringVar(&opts.memoryPath, "memory", "", "Path to translation memory database (empty disables)")
	cmd.Flags().StringVar(&opts.reasoningEffort, "reasoning-effort", "", "Reasoning effort for capable models (minimal, low, medium, high)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Overwrite output file without asking")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API key from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

}

// stringSetting resolves a string option: an explicitly set flag wins, then
// the config file or DOCTRAN_* environment, then the flag default.
func stringSetting(cmd *cobra.Command, flagName, viperKey, flagValue string) string {
	if !cmd.Flags().Changed(flagName) && viper.IsSet(viperKey) {
		return viper.GetString(viperKey)
	}
	return flagValue
}

func floatSetting(cmd *cobra.Command, flagName, viperKey string, flagValue float64) float64 {
	if !cmd.Flags().Changed(flagName) && viper.IsSet(viperKey) {
		return viper.GetFloat64(viperKey)
	}
	return flagValue
}

var defaultModels = map[string]string{
	"gemini": "gemini-3-flash-preview",
	"openai": "gpt-5-mini",
	"ollama": "llama3.2",
}

// runSetup initializes logging and resolves the provider, model, API key,
// and glossary shared by the translate and batch commands.
func runSetup(cmd *cobra.Command, opts *translateOptions) (provider, model, apiKey string, glossary map[string]string, err error) {
	logLevel := logger.LevelInfo
	if opts.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return "", "", "", nil, err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return "", "", "", nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)

	provider = stringSetting(cmd, "provider", "provider", opts.provider)
	model = stringSetting(cmd, "model", "model", opts.modelName)
	if model == "" {
		model = defaultModels[provider]
	}

	if provider != "ollama" {
		key, source, err := resolveAPIKey(provider, opts.allowEnv, opts.envOnly)
		if err != nil {
			return "", "", "", nil, err
		}
		apiKey = key
		logger.Info("Using API Key", "provider", provider, "source", source)
	}

	if opts.glossaryPath != "" {
		glossary, err = loadGlossary(opts.glossaryPath)
		if err != nil {
			return "", "", "", nil, err
		}
		logger.Info("Loaded glossary", "terms", len(glossary))
	}
	return provider, model, apiKey, glossary, nil
}

// newPipelineConfig builds a run configuration for one input/output pair.
// Callers set the progress and overwrite callbacks themselves.
func newPipelineConfig(cmd *cobra.Command, opts *translateOptions, provider, model, apiKey string, glossary map[string]string, input, output string) pipeline.Config {
	return pipeline.Config{
		InputPath:           input,
		OutputPath:          output,
		LogPath:             opts.logFilePath,
		Provider:            provider,
		Model:               model,
		APIKey:              apiKey,
		BaseURL:             stringSetting(cmd, "base-url", "base_url", opts.baseURL),
		SourceLang:          opts.sourceLang,
		TargetLang:          opts.targetLang,
		Algorithm:           opts.algorithm,
		WindowSize:          opts.windowSize,
		OverlapSize:         opts.overlapSize,
		RepairSeams:         opts.repairSeams,
		SeamOverlap:         opts.seamOverlap,
		CheckpointDir:       stringSetting(cmd, "checkpoint-dir", "checkpoint_dir", opts.checkpointDir),
		CheckpointFrequency: opts.checkpointFreq,
		Resume:              opts.resume,
		MaxCost:             floatSetting(cmd, "max-cost", "max_cost", opts.maxCost),
		Force:               opts.force,
		Glossary:            glossary,
		ReasoningEffort:     opts.reasoningEffort,
		MemoryPath:          stringSetting(cmd, "memory", "memory", opts.memoryPath),
		Overwrite:           opts.yes,
	}
}

func logProgress(current, total, tokens int, cost, elapsed float64, message string) {
	logger.Info("Progress",
		"completed", current,
		"total", total,
		"tokens", tokens,
		"cost", fmt.Sprintf("%.4f", cost),
	)
}

func runTranslate(cmd *cobra.Command, args []string, opts *translateOptions) error {
	if len(args) < 2 {
		return fmt.Errorf("input and output files are required")
	}
	if len(args) > 2 {
		fmt.Fprintf(os.Stderr, "Warning: expected 2 arguments but got %d. Did you forget quotes around file paths?\n", len(args))
		fmt.Fprintf(os.Stderr, "  Using input: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "  Using output: %s\n", args[1])
	}

	provider, model, apiKey, glossary, err := runSetup(cmd, opts)
	if err != nil {
		return err
	}

	startTime := time.Now()

	cfg := newPipelineConfig(cmd, opts, provider, model, apiKey, glossary, args[0], args[1])
	cfg.OnProgress = logProgress
	cfg.OnConfirmOverwrite = func(path string) bool {
		confirmed, err := prompt.DefaultConfirmer().ConfirmOverwrite(path, opts.yes)
		if err != nil {
			logger.Error("Overwrite confirmation failed", "error", err)
			return false
		}
		return confirmed
	}

	ctx, stop := signalContext()
	defer stop()
	result, err := pipeline.Run(ctx, cfg)

	printRunStats(result, time.Since(startTime), model)

	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Translation canceled", "error", err)
			return nil
		}
		return err
	}

	return statusError(result)
}

func statusError(result pipeline.Result) error {
	switch result.Status {
	case pipeline.StatusSuccess, pipeline.StatusSkipped:
		return nil
	case pipeline.StatusPartialSuccess:
		return fmt.Errorf("translation finished with status: %s (failed pages: %v)",
			result.Status, result.FailedPages)
	case pipeline.StatusFailure:
		return fmt.Errorf("translation finished with status: %s", result.Status)
	default:
		return fmt.Errorf("translation finished with unknown status: %q", result.Status)
	}
}

func loadGlossary(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file %s: %w", path, err)
	}
	glossary := make(map[string]string)
	if err := json.Unmarshal(data, &glossary); err != nil {
		return nil, fmt.Errorf("failed to parse glossary file %s: %w", path, err)
	}
	return glossary, nil
}
