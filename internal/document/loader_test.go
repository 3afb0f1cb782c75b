package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadTextSplitsAtBlankLines(t *testing.T) {
	path := writeTemp(t, "doc.txt", "first page\nstill first\n\nsecond page\n\nthird page\n")

	content, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if content.ContentType != "text/plain" {
		t.Errorf("expected text/plain, got %q", content.ContentType)
	}
	if len(content.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(content.Units))
	}
	if content.Units[0].Text != "first page\nstill first" {
		t.Errorf("unexpected first unit: %q", content.Units[0].Text)
	}
	if content.Units[2].Text != "third page" {
		t.Errorf("unexpected third unit: %q", content.Units[2].Text)
	}
}

func TestLoadTextSingleBlock(t *testing.T) {
	path := writeTemp(t, "doc.txt", "one block only")
	content, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(content.Units) != 1 {
		t.Errorf("expected 1 unit, got %d", len(content.Units))
	}
}

func TestLoadTextEmpty(t *testing.T) {
	path := writeTemp(t, "doc.txt", "\n\n  \n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("expected LoadError, got %T", err)
	}
}

func TestLoadUnsupportedFormats(t *testing.T) {
	for _, name := range []string{"a.pdf", "a.docx", "a.xyz"} {
		path := writeTemp(t, name, "content")
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error for unsupported format", name)
		}
	}
}

func TestLoadSubtitles(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:02,000\nHello there\n\n2\n00:00:03,000 --> 00:00:04,000\nGeneral greeting\n"
	path := writeTemp(t, "a.srt", srt)

	content, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(content.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(content.Units))
	}
	if content.Units[0].Text != "Hello there\nGeneral greeting" {
		t.Errorf("unexpected subtitle text: %q", content.Units[0].Text)
	}
}

func TestJoinedText(t *testing.T) {
	c := FromPages([]string{"a", "b", "c"})
	if c.JoinedText() != "a\n\nb\n\nc" {
		t.Errorf("unexpected joined text: %q", c.JoinedText())
	}
}
