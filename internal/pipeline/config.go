package pipeline

import (
	"fmt"

	"github.com/oukeidos/doctran/internal/engine"
	"github.com/oukeidos/doctran/internal/progress"
)

// Config holds everything required for one translation run.
type Config struct {
	// IO paths
	InputPath  string
	OutputPath string
	LogPath    string

	// Provider configuration
	Provider string // gemini, openai, or ollama
	Model    string
	APIKey   string
	BaseURL  string // custom endpoint for openai-compatible gateways or ollama

	// Languages
	SourceLang string
	TargetLang string

	// Algorithm parameters
	Algorithm   string
	WindowSize  int
	OverlapSize int
	RepairSeams bool
	SeamOverlap int

	// Checkpointing
	CheckpointDir       string
	CheckpointFrequency int
	Resume              bool

	// Cost controls
	MaxCost float64
	Force   bool // proceed even when the estimate exceeds MaxCost

	// Optional extras
	Glossary        map[string]string
	ReasoningEffort string
	MemoryPath      string // translation memory database, empty disables it

	// Flags
	Overwrite bool

	// Callbacks
	OnProgress         progress.Callback
	OnConfirmOverwrite func(path string) bool
}

// MaxWindowSize bounds the sliding-window size to keep single requests
// within model context limits.
const MaxWindowSize = 100000

// Normalize applies safe bounds to config values and returns any
// adjustments made.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if c.Provider == "" {
		c.Provider = "gemini"
		notes = append(notes, "provider defaulted to gemini")
	}
	if c.Algorithm == "" {
		c.Algorithm = engine.AlgorithmPage
		notes = append(notes, "algorithm defaulted to page")
	}
	if c.WindowSize > MaxWindowSize {
		notes = append(notes, fmt.Sprintf("window-size clamped from %d to %d", c.WindowSize, MaxWindowSize))
		c.WindowSize = MaxWindowSize
	}
	return c, notes
}

// Validate checks the configuration before any work starts.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unknown provider %q (want gemini, openai, or ollama)", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Provider != "ollama" && c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %q", c.Provider)
	}
	if c.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if c.Algorithm != engine.AlgorithmPage && c.Algorithm != engine.AlgorithmSlidingWindow {
		return fmt.Errorf("unknown algorithm %q (want %s or %s)",
			c.Algorithm, engine.AlgorithmPage, engine.AlgorithmSlidingWindow)
	}
	if c.WindowSize < 0 || c.OverlapSize < 0 {
		return fmt.Errorf("window and overlap sizes must not be negative")
	}
	if c.WindowSize > 0 && c.OverlapSize >= c.WindowSize {
		return fmt.Errorf("overlap size (%d) must be smaller than window size (%d)",
			c.OverlapSize, c.WindowSize)
	}
	if c.MaxCost < 0 {
		return fmt.Errorf("max cost must not be negative")
	}
	return nil
}
