package pipeline

// Status classifies how a run ended.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailure        Status = "failure"
	StatusSkipped        Status = "skipped"
)

// Result summarizes a finished translation run.
type Result struct {
	Status      Status
	OutputPath  string
	TokensUsed  int
	Cost        float64
	TimeTaken   float64
	FailedPages []int
	Warnings    []string
}
