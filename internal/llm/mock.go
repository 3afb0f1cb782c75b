package llm

import "context"

// Mock is a test double for Translator. By default it echoes the request
// text with Prefix prepended and charges TokensPerCall/CostPerCall. FailOn
// maps 1-based call numbers to errors; TranslateFunc overrides everything
// when set.
type Mock struct {
	Prefix        string
	TokensPerCall int
	CostPerCall   float64
	FailOn        map[int]error
	TranslateFunc func(ctx context.Context, req Request) (*Response, error)
	ModelValid    bool

	Calls []Request
}

func (m *Mock) Translate(ctx context.Context, req Request) (*Response, error) {
	m.Calls = append(m.Calls, req)

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, req)
	}
	if err, ok := m.FailOn[len(m.Calls)]; ok {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := m.TokensPerCall
	if tokens == 0 {
		tokens = 10
	}
	return &Response{
		Text:       m.Prefix + req.Text,
		TokensUsed: tokens,
		Cost:       m.CostPerCall,
	}, nil
}

func (m *Mock) ValidateModel(ctx context.Context) (bool, error) {
	return m.ModelValid, nil
}

var _ Translator = (*Mock)(nil)
