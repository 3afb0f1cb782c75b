package memory

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLookupMiss(t *testing.T) {
	c := openTestCache(t)

	_, ok, err := c.Lookup(context.Background(), "hello", "en", "fr", "test-model")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if ok {
		t.Error("expected miss for empty cache")
	}
}

func TestStoreAndLookup(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	if err := c.Store(ctx, "hello", "en", "fr", "test-model", "bonjour"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	got, ok, err := c.Lookup(ctx, "hello", "en", "fr", "test-model")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after Store")
	}
	if got != "bonjour" {
		t.Errorf("Lookup() = %q, want %q", got, "bonjour")
	}
}

func TestLookupKeyedByLanguagePairAndModel(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	if err := c.Store(ctx, "hello", "en", "fr", "model-a", "bonjour"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	if _, ok, _ := c.Lookup(ctx, "hello", "en", "de", "model-a"); ok {
		t.Error("unexpected hit for different target language")
	}
	if _, ok, _ := c.Lookup(ctx, "hello", "en", "fr", "model-b"); ok {
		t.Error("unexpected hit for different model")
	}
}

func TestStoreOverwrites(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	if err := c.Store(ctx, "hello", "en", "fr", "m", "bonjour"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if err := c.Store(ctx, "hello", "en", "fr", "m", "salut"); err != nil {
		t.Fatalf("Store() overwrite error: %v", err)
	}

	got, ok, err := c.Lookup(ctx, "hello", "en", "fr", "m")
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v", ok, err)
	}
	if got != "salut" {
		t.Errorf("Lookup() = %q, want %q", got, "salut")
	}
}

func TestLookupNormalizesSourceText(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	// NFD form of "café": 'e' followed by a combining acute accent.
	nfd := "café"
	if err := c.Store(ctx, nfd, "fr", "en", "m", "coffee"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	got, ok, err := c.Lookup(ctx, "café", "fr", "en", "m")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !ok {
		t.Fatal("expected hit for NFC form of NFD-stored text")
	}
	if got != "coffee" {
		t.Errorf("Lookup() = %q, want %q", got, "coffee")
	}
}
