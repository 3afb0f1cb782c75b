// Package engine orchestrates the translation of a whole document through an
// llm.Translator. Two algorithms are supported: "page" translates each
// document unit independently and tolerates individual failures, while
// "sliding-window" re-chunks the joined text into overlapping windows and
// fails atomically. Units are processed sequentially so checkpoints always
// describe a contiguous, ordered chunk map.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oukeidos/doctran/internal/checkpoint"
	"github.com/oukeidos/doctran/internal/document"
	"github.com/oukeidos/doctran/internal/llm"
	"github.com/oukeidos/doctran/internal/logger"
	"github.com/oukeidos/doctran/internal/memory"
	"github.com/oukeidos/doctran/internal/progress"
	"github.com/oukeidos/doctran/internal/seam"
	"github.com/oukeidos/doctran/internal/window"
)

// Supported translation algorithms.
const (
	AlgorithmPage          = "page"
	AlgorithmSlidingWindow = "sliding-window"
)

// Sliding-window defaults, in runes. The overlap default is capped at a
// quarter of the window so tiny windows still make forward progress.
const (
	DefaultWindowSize  = 1000
	DefaultOverlapSize = 100
)

// DefaultSeamOverlap is the rune span inspected when repairing page seams.
const DefaultSeamOverlap = 200

// Config holds the parameters of one translation run.
type Config struct {
	SourceLang string
	TargetLang string
	Model      string
	Algorithm  string

	// Sliding-window parameters; zero values select the defaults.
	WindowSize  int
	OverlapSize int

	// RepairSeams enables the page algorithm's seam-aware mode, which
	// re-stitches adjacent page boundaries after translation.
	RepairSeams bool
	SeamOverlap int

	// Checkpointing is enabled when CheckpointDir is non-empty. Frequency
	// is in successfully translated units; zero means every unit.
	CheckpointDir       string
	CheckpointFrequency int
	Resume              bool
	InputFile           string

	// MaxCost aborts the run once the accumulated cost exceeds it.
	// Zero disables the budget.
	MaxCost float64

	Glossary        map[string]string
	ReasoningEffort string
}

func (c Config) windowSize() int {
	if c.WindowSize > 0 {
		return c.WindowSize
	}
	return DefaultWindowSize
}

func (c Config) overlapSize() int {
	if c.OverlapSize > 0 {
		return c.OverlapSize
	}
	n := c.windowSize() / 4
	if n > DefaultOverlapSize {
		n = DefaultOverlapSize
	}
	return n
}

func (c Config) seamOverlap() int {
	if c.SeamOverlap > 0 {
		return c.SeamOverlap
	}
	return DefaultSeamOverlap
}

func (c Config) checkpointEvery() int {
	if c.CheckpointFrequency > 0 {
		return c.CheckpointFrequency
	}
	return 1
}

// Options carries optional collaborators for a translation run.
type Options struct {
	// OnProgress receives an update after every processed unit.
	OnProgress progress.Callback

	// Memory, when set, is consulted before each text unit under the page
	// algorithm and updated with successful translations.
	Memory *memory.Cache
}

// TranslateDocument translates content with the configured algorithm and
// returns the aggregate result. Context cancellation aborts the run and is
// returned unwrapped so callers can distinguish it from a failure.
func TranslateDocument(ctx context.Context, content document.Content, cfg Config, tr llm.Translator, opts Options) (*llm.Response, error) {
	switch cfg.Algorithm {
	case AlgorithmPage:
		return translatePages(ctx, content, cfg, tr, opts)
	case AlgorithmSlidingWindow:
		return translateSlidingWindow(ctx, content, cfg, tr, opts)
	default:
		return nil, llm.NewTranslationError(
			fmt.Sprintf("unknown translation algorithm %q", cfg.Algorithm), nil)
	}
}

func newStore(cfg Config, windowed bool) *checkpoint.Store {
	if cfg.CheckpointDir == "" {
		return nil
	}
	fp := checkpoint.Fingerprint{
		SourceLang: cfg.SourceLang,
		TargetLang: cfg.TargetLang,
		Model:      cfg.Model,
		Algorithm:  cfg.Algorithm,
	}
	if windowed {
		fp.WindowSize = cfg.windowSize()
		fp.OverlapSize = cfg.overlapSize()
	}
	return checkpoint.NewStore(cfg.CheckpointDir, cfg.InputFile, fp)
}

// translatePages runs the page algorithm: each unit is translated on its
// own, failures are recorded and skipped, and the run succeeds as long as at
// least one unit came through.
func translatePages(ctx context.Context, content document.Content, cfg Config, tr llm.Translator, opts Options) (*llm.Response, error) {
	units := content.Units
	total := len(units)
	tracker := progress.NewTracker(total, opts.OnProgress)
	store := newStore(cfg, false)

	translated := make(map[int]string, total) // keyed by 1-based unit index
	pageErrors := make(map[int]string)
	tokens := 0
	cost := 0.0

	if cfg.Resume && store != nil {
		state, err := store.Load()
		if err != nil {
			return nil, err
		}
		if state != nil {
			for idx, text := range state.TranslatedChunks {
				if idx >= 1 && idx <= total {
					translated[idx] = text
				}
			}
			tokens = state.TokenUsage
			cost = state.Cost
			tracker.Seed(len(translated), tokens, cost)
			logger.Info("Resuming from checkpoint",
				"completed", len(translated), "total", total)
		}
	}

	sinceSave := 0
	for i := 1; i <= total; i++ {
		if _, done := translated[i]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit := units[i-1]
		req := llm.Request{
			SourceLang:      cfg.SourceLang,
			TargetLang:      cfg.TargetLang,
			Model:           cfg.Model,
			Glossary:        cfg.Glossary,
			ReasoningEffort: cfg.ReasoningEffort,
			ContentType:     content.ContentType,
		}
		if unit.Image != nil {
			req.Image = unit.Image
		} else {
			req.Text = unit.Text
		}

		if opts.Memory != nil && unit.Image == nil {
			cached, hit, err := opts.Memory.Lookup(ctx, unit.Text, cfg.SourceLang, cfg.TargetLang, cfg.Model)
			if err != nil {
				logger.Warn("Translation memory lookup failed", "unit", i, "error", err)
			} else if hit {
				translated[i] = cached
				tracker.Update(i, &llm.Response{Text: cached}, nil)
				continue
			}
		}

		resp, err := tr.Translate(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			pageErrors[i] = err.Error()
			tracker.Update(i, nil, err)
			continue
		}

		translated[i] = resp.Text
		tokens += resp.TokensUsed
		cost += resp.Cost
		tracker.Update(i, resp, nil)

		if opts.Memory != nil && unit.Image == nil {
			if err := opts.Memory.Store(ctx, unit.Text, cfg.SourceLang, cfg.TargetLang, cfg.Model, resp.Text); err != nil {
				logger.Warn("Translation memory store failed", "unit", i, "error", err)
			}
		}

		if cfg.MaxCost > 0 && cost > cfg.MaxCost {
			return nil, llm.NewTranslationError(
				fmt.Sprintf("cost budget exceeded: $%.4f spent of $%.4f allowed", cost, cfg.MaxCost), nil)
		}

		sinceSave++
		if store != nil && sinceSave >= cfg.checkpointEvery() {
			if err := saveState(store, cfg, translated, pageErrors, tokens, cost, tracker.Elapsed()); err != nil {
				return nil, err
			}
			sinceSave = 0
		}
	}

	failed := sortedKeys(pageErrors)
	if len(translated) == 0 {
		return nil, llm.NewTranslationError(
			fmt.Sprintf("all %d pages failed to translate (pages %v)", total, failed), nil)
	}

	result := joinInOrder(translated, total)
	if cfg.RepairSeams {
		result = repairSeams(translated, total, cfg.seamOverlap())
	}

	tracker.Finish("Translation complete")
	if store != nil {
		if err := store.Cleanup(); err != nil {
			logger.Warn("Failed to remove checkpoint", "error", err)
		}
	}

	resp := &llm.Response{
		Text:       result,
		TokensUsed: tokens,
		Cost:       cost,
		TimeTaken:  tracker.Elapsed(),
	}
	if len(failed) > 0 {
		resp.FailedPages = failed
		resp.PageErrors = pageErrors
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("%d of %d pages failed and were omitted from the output", len(failed), total))
		logger.Warn("Translation finished with failed pages", "failed", failed)
	}
	return resp, nil
}

// translateSlidingWindow runs the sliding-window algorithm: the whole text
// is re-chunked into overlapping windows, each window must translate, and
// the translated windows are merged on their overlaps at the end.
func translateSlidingWindow(ctx context.Context, content document.Content, cfg Config, tr llm.Translator, opts Options) (*llm.Response, error) {
	for _, u := range content.Units {
		if u.Image != nil {
			return nil, llm.NewTranslationError(
				"sliding-window algorithm requires text content", nil)
		}
	}

	windowSize := cfg.windowSize()
	overlapSize := cfg.overlapSize()
	store := newStore(cfg, true)

	if cfg.Resume && store != nil {
		state, err := store.Load()
		if err != nil {
			return nil, err
		}
		if state != nil && len(state.TranslatedChunks) > 0 {
			chunks := chunksInOrder(state.TranslatedChunks)
			logger.Info("Reusing checkpointed sliding-window result",
				"windows", len(chunks))
			return &llm.Response{
				Text:       window.Merge(chunks, overlapSize),
				TokensUsed: state.TokenUsage,
				Cost:       state.Cost,
				TimeTaken:  state.TimeTaken,
			}, nil
		}
	}

	windows, err := window.Create(content.JoinedText(), windowSize, overlapSize)
	if err != nil {
		return nil, llm.NewTranslationError("invalid window configuration", err)
	}

	total := len(windows)
	tracker := progress.NewTracker(total, opts.OnProgress)
	translated := make(map[int]string, total)
	tokens := 0
	cost := 0.0
	sinceSave := 0

	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := tr.Translate(ctx, llm.Request{
			SourceLang:      cfg.SourceLang,
			TargetLang:      cfg.TargetLang,
			Text:            w,
			ContentType:     llm.ContentTypeText,
			Model:           cfg.Model,
			Glossary:        cfg.Glossary,
			ReasoningEffort: cfg.ReasoningEffort,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, llm.NewTranslationError(
				fmt.Sprintf("window %d of %d failed", i+1, total), err)
		}

		translated[i+1] = resp.Text
		tokens += resp.TokensUsed
		cost += resp.Cost
		tracker.Update(i+1, resp, nil)

		if cfg.MaxCost > 0 && cost > cfg.MaxCost {
			return nil, llm.NewTranslationError(
				fmt.Sprintf("cost budget exceeded: $%.4f spent of $%.4f allowed", cost, cfg.MaxCost), nil)
		}

		sinceSave++
		if store != nil && sinceSave >= cfg.checkpointEvery() {
			if err := saveState(store, cfg, translated, nil, tokens, cost, tracker.Elapsed()); err != nil {
				return nil, err
			}
			sinceSave = 0
		}
	}

	merged := window.Merge(chunksInOrder(translated), overlapSize)
	tracker.Finish("Translation complete")
	if store != nil {
		if err := store.Cleanup(); err != nil {
			logger.Warn("Failed to remove checkpoint", "error", err)
		}
	}

	return &llm.Response{
		Text:       merged,
		TokensUsed: tokens,
		Cost:       cost,
		TimeTaken:  tracker.Elapsed(),
	}, nil
}

func saveState(store *checkpoint.Store, cfg Config, translated map[int]string, pageErrors map[int]string, tokens int, cost, elapsed float64) error {
	chunks := make(map[int]string, len(translated))
	for k, v := range translated {
		chunks[k] = v
	}
	return store.Save(&checkpoint.State{
		SourceLang:       cfg.SourceLang,
		TargetLang:       cfg.TargetLang,
		Algorithm:        cfg.Algorithm,
		CompletedPages:   sortedKeys(translated),
		FailedPages:      sortedKeys(pageErrors),
		TranslatedChunks: chunks,
		TokenUsage:       tokens,
		Cost:             cost,
		TimeTaken:        elapsed,
	})
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// chunksInOrder flattens a 1-based chunk map into an index-ordered slice,
// skipping gaps.
func chunksInOrder(m map[int]string) []string {
	out := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

func joinInOrder(translated map[int]string, total int) string {
	parts := make([]string, 0, len(translated))
	for i := 1; i <= total; i++ {
		if text, ok := translated[i]; ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, window.Separator)
}

func repairSeams(translated map[int]string, total, overlap int) string {
	pages := make([]string, 0, len(translated))
	for i := 1; i <= total; i++ {
		if text, ok := translated[i]; ok {
			pages = append(pages, text)
		}
	}
	return seam.Repair(pages, overlap)
}
