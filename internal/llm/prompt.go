package llm

import (
	"fmt"
	"sort"
	"strings"
)

// SystemPrompt is the instruction shared by every provider. Providers that
// support a dedicated system role pass it there; others prepend it to the
// user message.
const SystemPrompt = "You are a professional translator. Translate the text exactly, " +
	"preserving formatting, line breaks, and paragraph structure. " +
	"Respond with the translation only, no commentary."

// BuildPrompt renders the user-facing portion of a translation request:
// the language instruction, glossary constraints, surrounding context, and
// the text itself.
func BuildPrompt(req Request) string {
	var b strings.Builder

	source := req.SourceLang
	if source == "" || source == "auto" {
		source = "the detected language"
	}
	fmt.Fprintf(&b, "Translate the following text from %s to %s.\n", source, req.TargetLang)

	if len(req.Glossary) > 0 {
		b.WriteString("\nUse these exact term translations:\n")
		terms := make([]string, 0, len(req.Glossary))
		for term := range req.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fmt.Fprintf(&b, "- %s -> %s\n", term, req.Glossary[term])
		}
	}

	if req.Context != "" {
		fmt.Fprintf(&b, "\nPreceding context (do not translate):\n%s\n", req.Context)
	}

	fmt.Fprintf(&b, "\nText:\n%s", req.Text)
	return b.String()
}
