// Package llm defines the provider-neutral translation contract. Concrete
// adapters live in the subpackages (gemini, openai, ollama) and are injected
// into the engine, which only sees this interface.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Content types understood by the engine. Image formats carry their own
// subtype (image/png, image/jpeg, ...).
const (
	ContentTypeText = "text/plain"
)

// ReasoningEffort levels accepted by reasoning-capable models. Higher levels
// improve quality but increase cost and latency.
const (
	EffortMinimal = "minimal"
	EffortLow     = "low"
	EffortMedium  = "medium"
	EffortHigh    = "high"
)

// Request describes one unit's translation ask. It is constructed fresh per
// unit and never mutated after creation.
type Request struct {
	SourceLang      string
	TargetLang      string
	Text            string
	Image           []byte
	ContentType     string
	Model           string
	Context         string
	Glossary        map[string]string
	ReasoningEffort string
}

// IsImage reports whether the request carries binary image content.
func (r Request) IsImage() bool {
	return strings.HasPrefix(r.ContentType, "image/")
}

// Response is the result of one unit translation, and doubles as the
// aggregate result returned by the orchestrator. The aggregate-only fields
// (FailedPages, PageErrors, Warnings) are populated only at the top level.
type Response struct {
	Text            string
	TokensUsed      int
	Cost            float64
	TimeTaken       float64
	GlossaryUpdates map[string]string
	FailedPages     []int
	PageErrors      map[int]string
	Warnings        []string
}

// Translator is the LLM collaborator contract. Translate performs network
// I/O and honors ctx cancellation. ValidateModel probes availability of the
// configured model without translating anything.
type Translator interface {
	Translate(ctx context.Context, req Request) (*Response, error)
	ValidateModel(ctx context.Context) (bool, error)
}

// TranslationError is the whole-operation failure type: unknown algorithm,
// unsupported content, provider failure, or any unhandled error during
// orchestration. The original cause is preserved for errors.Is/As.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "translation failed"
}

func (e *TranslationError) Unwrap() error { return e.Cause }

// NewTranslationError wraps cause with a descriptive message.
func NewTranslationError(message string, cause error) *TranslationError {
	return &TranslationError{Message: message, Cause: cause}
}
