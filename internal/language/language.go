// Package language validates and canonicalizes the language codes given on
// the command line. Any well-formed BCP 47 tag is accepted; the source
// language additionally accepts "auto" to let the model detect it.
package language

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/oukeidos/doctran/internal/apperrors"
)

// Auto is the sentinel source language for model-side detection.
const Auto = "auto"

// Normalize parses code and returns its canonical BCP 47 form.
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperrors.New(apperrors.KindValidation, "language code is required", nil)
	}
	if strings.EqualFold(code, Auto) {
		return Auto, nil
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", apperrors.New(apperrors.KindValidation,
			fmt.Sprintf("unrecognized language code %q", code), err)
	}
	return tag.String(), nil
}

// Name returns the English display name for a canonical code, or the code
// itself when no name is known.
func Name(code string) string {
	if code == Auto {
		return "Automatic detection"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// common is the set listed by the languages command. Any parseable tag works
// for translation; this list just keeps the help output useful.
var common = []string{
	"ar", "bn", "cs", "da", "de", "el", "en", "es", "fa", "fi", "fr",
	"he", "hi", "hu", "id", "it", "ja", "ko", "nl", "no", "pl", "pt",
	"ro", "ru", "sv", "th", "tr", "uk", "vi", "zh-Hans", "zh-Hant",
}

// Entry pairs a canonical code with its display name.
type Entry struct {
	Code string
	Name string
}

// Common returns the commonly used languages sorted by display name.
func Common() []Entry {
	entries := make([]Entry, 0, len(common))
	for _, code := range common {
		entries = append(entries, Entry{Code: code, Name: Name(code)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
