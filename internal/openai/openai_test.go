package openai

import (
	"fmt"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/oukeidos/doctran/internal/apperrors"
)

func TestClassifyErrorByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   apperrors.Kind
	}{
		{401, apperrors.KindAuth},
		{403, apperrors.KindAuth},
		{404, apperrors.KindBadRequest},
		{429, apperrors.KindRateLimit},
		{500, apperrors.KindTransient},
		{503, apperrors.KindTransient},
		{400, apperrors.KindBadRequest},
	}
	for _, tt := range tests {
		err := classifyError(&goopenai.APIError{HTTPStatusCode: tt.status})
		kind, ok := apperrors.KindOf(err)
		if !ok {
			t.Errorf("status %d: expected a kinded error, got %v", tt.status, err)
			continue
		}
		if kind != tt.want {
			t.Errorf("status %d: kind = %v, want %v", tt.status, kind, tt.want)
		}
	}
}

func TestClassifyErrorNetworkIsTransient(t *testing.T) {
	err := classifyError(fmt.Errorf("dial tcp: i/o timeout"))
	kind, ok := apperrors.KindOf(err)
	if !ok || kind != apperrors.KindTransient {
		t.Errorf("network error kind = %v, want transient", kind)
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if classifyError(nil) != nil {
		t.Error("nil error should stay nil")
	}
}
