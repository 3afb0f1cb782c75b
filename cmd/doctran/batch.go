package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oukeidos/doctran/internal/jobs"
	"github.com/oukeidos/doctran/internal/llm"
	"github.com/oukeidos/doctran/internal/logger"
	"github.com/oukeidos/doctran/internal/pipeline"
	"github.com/oukeidos/doctran/internal/progress"
)

func newBatchCmd() *cobra.Command {
	opts := translateOptions{}
	var outputDir string
	var parallel int

	cmd := &cobra.Command{
		Use:   "batch <input>...",
		Short: "Translate several documents concurrently",
		Long: `Translate several documents in one run. Each input produces an output
file named <stem>_<target><ext>, written next to the input unless
--output-dir is given. Existing outputs are skipped unless -y is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return fmt.Errorf("at least one input file is required")
			}
			return runBatch(cmd, args, &opts, outputDir, parallel)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addTranslateFlags(cmd, &opts)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for output files (default: next to each input)")
	cmd.Flags().IntVar(&parallel, "parallel", 2, "Maximum number of documents translated at once")
	return cmd
}

// batchOutputPath derives the output file name for one input, e.g.
// chapter.txt -> chapter_fr.txt.
func batchOutputPath(outputDir, input, targetLang string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, targetLang, ext))
}

func runBatch(cmd *cobra.Command, args []string, opts *translateOptions, outputDir string, parallel int) error {
	provider, model, apiKey, glossary, err := runSetup(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	queue := jobs.NewQueue(parallel)
	inputByJob := make(map[string]string, len(args))

	for _, input := range args {
		output := batchOutputPath(outputDir, input, opts.targetLang)
		cfg := newPipelineConfig(cmd, opts, provider, model, apiKey, glossary, input, output)

		id := queue.Submit(ctx, func(ctx context.Context, onProgress progress.Callback) (*llm.Response, error) {
			runCfg := cfg
			runCfg.OnProgress = onProgress
			result, err := pipeline.Run(ctx, runCfg)
			if err != nil {
				return nil, err
			}
			if result.Status == pipeline.StatusSkipped {
				logger.Info("Skipped existing output", "path", output)
			}
			if statusErr := statusError(result); statusErr != nil {
				return nil, statusErr
			}
			return &llm.Response{
				TokensUsed:  result.TokensUsed,
				Cost:        result.Cost,
				TimeTaken:   result.TimeTaken,
				FailedPages: result.FailedPages,
				Warnings:    result.Warnings,
			}, nil
		})
		inputByJob[id] = input

		queue.Subscribe(id, func(u jobs.Update) {
			if u.Status == jobs.StatusRunning {
				logger.Info("Progress",
					"file", input,
					"completed", u.CurrentPage,
					"total", u.TotalPages,
					"tokens", u.TokensUsed,
					"cost", fmt.Sprintf("%.4f", u.CostSoFar),
				)
			}
		})
	}

	queue.Wait()

	var failed []string
	var totalTokens int
	var totalCost float64
	for _, job := range queue.All() {
		input := inputByJob[job.ID]
		switch job.Status {
		case jobs.StatusCompleted:
			if job.Result != nil {
				totalTokens += job.Result.TokensUsed
				totalCost += job.Result.Cost
			}
		case jobs.StatusCancelled:
			logger.Warn("Translation canceled", "file", input)
		default:
			logger.Error("Translation failed", "file", input, "error", job.Err)
			failed = append(failed, input)
		}
	}

	logger.Info("Batch finished",
		"documents", len(args),
		"failed", len(failed),
		"tokens", totalTokens,
		"cost", fmt.Sprintf("%.4f", totalCost),
	)

	if ctx.Err() != nil {
		return nil
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d documents failed: %s", len(failed), len(args), strings.Join(failed, ", "))
	}
	return nil
}
