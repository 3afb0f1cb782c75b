// Package checkpoint persists in-progress translation state so interrupted
// runs can resume. One checkpoint file exists per input document, named after
// the input's base name inside the configured checkpoint directory. Writes
// are atomic (temp file then rename) so a reader never observes a partial
// checkpoint.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oukeidos/doctran/internal/files"
	"github.com/oukeidos/doctran/internal/logger"
)

// ErrWrite wraps I/O failures while saving a checkpoint. Save failures are
// surfaced to the caller: checkpointing is opt-in and expected to work.
var ErrWrite = errors.New("checkpoint write failed")

// Fingerprint identifies the configuration a checkpoint was written under.
// A checkpoint is only valid for resume when the stored fingerprint matches
// the current one; comparison is plain value equality so mismatch diagnostics
// stay human-readable. WindowSize and OverlapSize participate only for the
// sliding-window algorithm, preventing a stale full-result resume after the
// window parameters changed between runs.
type Fingerprint struct {
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	Model       string `json:"model"`
	Algorithm   string `json:"algorithm"`
	WindowSize  int    `json:"window_size,omitempty"`
	OverlapSize int    `json:"overlap_size,omitempty"`
}

// State is the checkpoint payload. TranslatedChunks is keyed by 1-based unit
// index.
type State struct {
	SourceLang       string         `json:"source_lang"`
	TargetLang       string         `json:"target_lang"`
	Algorithm        string         `json:"algorithm"`
	CompletedPages   []int          `json:"completed_pages"`
	FailedPages      []int          `json:"failed_pages"`
	TranslatedChunks map[int]string `json:"translated_chunks"`
	TokenUsage       int            `json:"token_usage"`
	Cost             float64        `json:"cost"`
	TimeTaken        float64        `json:"time_taken"`
	Config           Fingerprint    `json:"config"`
}

// Store saves and loads checkpoints for a single input document.
type Store struct {
	dir         string
	inputFile   string
	fingerprint Fingerprint
}

// NewStore creates a store rooted at dir for the given input file. The
// directory is created on first save, not here.
func NewStore(dir, inputFile string, fp Fingerprint) *Store {
	return &Store{
		dir:         dir,
		inputFile:   inputFile,
		fingerprint: fp,
	}
}

// Path returns the canonical checkpoint file path for the input document.
func (s *Store) Path() string {
	base := strings.TrimSuffix(filepath.Base(s.inputFile), filepath.Ext(s.inputFile))
	return filepath.Join(s.dir, base+"_checkpoint.json")
}

// Save serializes state and writes it atomically over the canonical path.
func (s *Store) Save(state *State) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	state.Config = s.fingerprint
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	path := s.Path()
	if err := files.AtomicWrite(path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	logger.Info("Saved checkpoint",
		"path", path,
		"completed", len(state.CompletedPages),
		"failed", len(state.FailedPages),
		"tokens", state.TokenUsage,
	)
	return nil
}

// Load returns the persisted state, or nil when no usable checkpoint exists.
// A missing file, malformed content, or a fingerprint mismatch all degrade to
// "no checkpoint" rather than aborting the job; only the mismatch is worth a
// warning since it usually means the user changed languages or model.
func (s *Store) Load() (*State, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		logger.Warn("Failed to read checkpoint, starting fresh", "path", path, "error", err)
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Malformed checkpoint ignored", "path", path, "error", err)
		return nil, nil
	}

	if state.Config != s.fingerprint {
		logger.Warn("Checkpoint configuration mismatch, ignoring checkpoint",
			"path", path,
			"checkpoint_source", state.Config.SourceLang,
			"checkpoint_target", state.Config.TargetLang,
			"checkpoint_model", state.Config.Model,
			"checkpoint_algorithm", state.Config.Algorithm,
			"current_source", s.fingerprint.SourceLang,
			"current_target", s.fingerprint.TargetLang,
			"current_model", s.fingerprint.Model,
			"current_algorithm", s.fingerprint.Algorithm,
		)
		return nil, nil
	}

	logger.Info("Loaded checkpoint",
		"path", path,
		"completed", len(state.CompletedPages),
		"failed", len(state.FailedPages),
		"tokens", state.TokenUsage,
	)
	return &state, nil
}

// Cleanup removes the checkpoint after a successful run so the next run
// starts fresh. A missing file is not an error.
func (s *Store) Cleanup() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
