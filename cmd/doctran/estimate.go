package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oukeidos/doctran/internal/pipeline"
)

type estimateOptions struct {
	provider string
	maxCost  float64
}

func newEstimateCmd() *cobra.Command {
	opts := estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate <input>",
		Short: "Estimate translation cost without translating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, args[0], &opts)
		},
		SilenceUsage: true,
	}

	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&opts.provider, "provider", "gemini", "Model provider (gemini, openai, or ollama)")
	cmd.Flags().Float64Var(&opts.maxCost, "max-cost", 0, "Maximum cost in USD to warn against (0 = unlimited)")
	return cmd
}

func runEstimate(cmd *cobra.Command, inputPath string, opts *estimateOptions) error {
	est, err := pipeline.Estimate(inputPath, opts.provider, opts.maxCost)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Estimated tokens: %d\n", est.Tokens)
	fmt.Fprintf(out, "Estimated cost:   $%.2f (%s)\n", est.Cost, est.Level)
	fmt.Fprintf(out, "Estimated time:   %s\n", (time.Duration(est.Seconds) * time.Second).Round(time.Second))
	for _, w := range est.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
	return nil
}
