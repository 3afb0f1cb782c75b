// Package cost estimates what a translation run will cost before any
// provider call is made. Estimates are deliberately rough: roughly four
// characters per token for text, a flat per-page figure for page-addressed
// formats.
package cost

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Level buckets an estimate for display.
type Level string

const (
	LevelLow      Level = "low"       // under $1
	LevelMedium   Level = "medium"    // $1 to $5
	LevelHigh     Level = "high"      // $5 to $20
	LevelVeryHigh Level = "very_high" // over $20
)

// LevelOf classifies a dollar amount.
func LevelOf(cost float64) Level {
	switch {
	case cost < 1.0:
		return LevelLow
	case cost < 5.0:
		return LevelMedium
	case cost < 20.0:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}

// Per-provider default price per 1K input tokens. Local models are free.
var providerCosts = map[string]float64{
	"openai": 0.03,
	"gemini": 0.003,
	"ollama": 0.0,
}

// modelPricing is per-1K-token pricing for models we know exactly,
// input and output priced separately.
type modelPricing struct {
	input  float64
	output float64
}

var modelCosts = map[string]modelPricing{
	"gpt-5":      {input: 0.00125, output: 0.01},
	"gpt-5-mini": {input: 0.00025, output: 0.002},
	"gpt-5-nano": {input: 0.00005, output: 0.0004},
}

// ForModel computes the exact cost of a finished call when per-model pricing
// is known, zero otherwise.
func ForModel(model string, inputTokens, outputTokens int) float64 {
	base := model
	if i := strings.LastIndex(model, "/"); i >= 0 {
		base = model[i+1:]
	}
	p, ok := modelCosts[base]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1000*p.input + float64(outputTokens)/1000*p.output
}

// charsPerToken is the estimation ratio for plain text.
const charsPerToken = 4

// tokensPerImagePage is the flat estimate for one page of image content.
const tokensPerImagePage = 500

// EstimateTextTokens estimates the token count of text. Counting grapheme
// clusters rather than bytes keeps the estimate stable for non-Latin
// scripts and emoji.
func EstimateTextTokens(text string) int {
	n := uniseg.GraphemeClusterCount(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// EstimateImageTokens estimates the token count of pageCount image pages.
func EstimateImageTokens(pageCount int) int {
	return pageCount * tokensPerImagePage
}

// Estimate is a pre-flight prediction for a translation run.
type Estimate struct {
	Tokens   int
	Cost     float64
	Seconds  float64
	Level    Level
	Warnings []string
}

// largeDocumentTokens is the threshold above which cloud runs get a warning.
const largeDocumentTokens = 50000

// EstimateRun predicts dollars and wall time for translating the given
// token count with the given provider. maxCost of zero disables the
// threshold warning.
func EstimateRun(provider string, tokens int, maxCost float64) Estimate {
	perK := providerCosts[provider]
	cost := float64(tokens) / 1000 * perK

	// Cloud providers stream slower than local ones.
	tokensPerSecond := 5.0
	if provider == "ollama" {
		tokensPerSecond = 20.0
	}

	est := Estimate{
		Tokens:  tokens,
		Cost:    cost,
		Seconds: float64(tokens) / tokensPerSecond,
		Level:   LevelOf(cost),
	}

	if provider != "ollama" {
		if tokens > largeDocumentTokens {
			est.Warnings = append(est.Warnings, fmt.Sprintf(
				"Large document detected (%d tokens). Consider a local model for no cost.", tokens))
		}
		if maxCost > 0 && cost > maxCost {
			est.Warnings = append(est.Warnings, fmt.Sprintf(
				"Estimated cost ($%.2f) exceeds maximum threshold ($%.2f)", cost, maxCost))
		}
	}
	return est
}
