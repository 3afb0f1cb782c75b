package checkpoint

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testFingerprint() Fingerprint {
	return Fingerprint{
		SourceLang: "en",
		TargetLang: "fr",
		Model:      "gemini-2.5-flash",
		Algorithm:  "page",
	}
}

func testState() *State {
	return &State{
		SourceLang:     "en",
		TargetLang:     "fr",
		Algorithm:      "page",
		CompletedPages: []int{1, 2},
		FailedPages:    []int{3},
		TranslatedChunks: map[int]string{
			1: "premier",
			2: "deuxième",
		},
		TokenUsage: 420,
		Cost:       0.015,
		TimeTaken:  12.5,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "/docs/report.txt", testFingerprint())

	if err := store.Save(testState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a checkpoint, got nil")
	}

	want := testState()
	want.Config = testFingerprint()
	if !reflect.DeepEqual(loaded, want) {
		t.Errorf("round trip mismatch:\n want %+v\n got  %+v", want, loaded)
	}
}

func TestLoadAbsent(t *testing.T) {
	store := NewStore(t.TempDir(), "missing.txt", testFingerprint())
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil for absent checkpoint, got %+v", loaded)
	}
}

func TestLoadFingerprintMismatch(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "report.txt", testFingerprint())
	if err := store.Save(testState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	changed := testFingerprint()
	changed.TargetLang = "de"
	other := NewStore(dir, "report.txt", changed)

	loaded, err := other.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected mismatched checkpoint to be treated as absent, got %+v", loaded)
	}
}

func TestLoadWindowParameterMismatch(t *testing.T) {
	dir := t.TempDir()
	fp := Fingerprint{
		SourceLang:  "en",
		TargetLang:  "ja",
		Model:       "gpt-4o",
		Algorithm:   "sliding-window",
		WindowSize:  1000,
		OverlapSize: 100,
	}
	store := NewStore(dir, "novel.txt", fp)
	state := testState()
	state.Algorithm = "sliding-window"
	if err := store.Save(state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fp.WindowSize = 500
	other := NewStore(dir, "novel.txt", fp)
	loaded, err := other.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Error("expected checkpoint with different window size to be rejected")
	}
}

func TestLoadMalformedContent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "report.txt", testFingerprint())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected malformed checkpoint to be treated as absent, got %+v", loaded)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "checkpoints")
	store := NewStore(dir, "report.txt", testFingerprint())
	if err := store.Save(testState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("expected checkpoint file to exist: %v", err)
	}
}

func TestCleanupRemovesCheckpoint(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, "report.txt", testFingerprint())
	if err := store.Save(testState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("expected checkpoint file to be removed")
	}

	// Cleanup is idempotent.
	if err := store.Cleanup(); err != nil {
		t.Errorf("second Cleanup failed: %v", err)
	}
}

func TestPathNaming(t *testing.T) {
	store := NewStore("/tmp/ckpt", "/home/user/docs/paper.pdf", testFingerprint())
	want := filepath.Join("/tmp/ckpt", "paper_checkpoint.json")
	if store.Path() != want {
		t.Errorf("expected %q, got %q", want, store.Path())
	}
}
