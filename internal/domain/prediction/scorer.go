package prediction

import "context"

// ScoreResult is what a Scorer produces: a probability in [0, 1] plus the
// model's own labels. Confidence is a free-form label such as "high" or
// "low"; only the probability feeds the risk assessment.
type ScoreResult struct {
	Probability float64 `json:"probability"`
	Prediction  int     `json:"prediction"`
	Confidence  string  `json:"confidence"`
}

// Scorer answers with a heart-disease probability for one clinical input.
// Implementations must respect ctx cancellation; any failure is reported as
// an error wrapping ErrScoringUnavailable.
type Scorer interface {
	Score(ctx context.Context, in ClinicalInput) (ScoreResult, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, in ClinicalInput) (ScoreResult, error)

func (f ScorerFunc) Score(ctx context.Context, in ClinicalInput) (ScoreResult, error) {
	return f(ctx, in)
}
