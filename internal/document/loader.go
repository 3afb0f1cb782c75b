package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astisub"
)

// LoadError reports an unreadable, corrupt, or unsupported input document.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load document %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Load reads a document from path, dispatching on the file extension.
// Supported: .txt (blank-line separated pages) and .srt/.vtt/.ssa/.ass
// subtitle files. PDF and DOCX require an external conversion step and are
// rejected with a descriptive error.
func Load(path string) (Content, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", "":
		return loadText(path)
	case ".srt", ".vtt", ".ssa", ".ass":
		return loadSubtitles(path)
	case ".pdf", ".docx":
		return Content{}, &LoadError{Path: path, Cause: fmt.Errorf("format %s is not supported; convert to plain text first", filepath.Ext(path))}
	default:
		return Content{}, &LoadError{Path: path, Cause: fmt.Errorf("unrecognized document format %q", filepath.Ext(path))}
	}
}

// loadText splits a plain-text file into pages at blank lines. A file with
// no blank lines yields a single unit.
func loadText(path string) (Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Content{}, &LoadError{Path: path, Cause: err}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var pages []string
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		pages = append(pages, strings.TrimRight(block, "\n"))
	}
	if len(pages) == 0 {
		return Content{}, &LoadError{Path: path, Cause: fmt.Errorf("document contains no text")}
	}

	return FromPages(pages), nil
}

// loadSubtitles flattens each subtitle cue into one line and groups cues
// into a single text unit, preserving cue order. Timing information is not
// carried: the engine translates prose, and subtitle reassembly is the
// caller's concern.
func loadSubtitles(path string) (Content, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return Content{}, &LoadError{Path: path, Cause: err}
	}

	var lines []string
	for _, item := range subs.Items {
		for _, l := range item.Lines {
			if s := strings.TrimSpace(l.String()); s != "" {
				lines = append(lines, s)
			}
		}
	}
	if len(lines) == 0 {
		return Content{}, &LoadError{Path: path, Cause: fmt.Errorf("subtitle file contains no dialogue text")}
	}

	return FromPages([]string{strings.Join(lines, "\n")}), nil
}
