package evaluator

import (
	"context"
	"time"

	"github.com/lectapp/lector-api/pkg/textsim"
)

// ManualName is the fixed registry name of the default strategy; the system
// always registers it so assessment works with zero configuration.
const ManualName = "manual"

// ManualStrategy is the system default: the plain normalized Levenshtein
// similarity with full confidence. It accepts any pair of inputs.
type ManualStrategy struct {
	now func() time.Time
}

// NewManualStrategy builds the default strategy.
func NewManualStrategy() *ManualStrategy {
	return &ManualStrategy{now: time.Now}
}

// Name identifies the strategy in the registry and in persisted evaluations.
func (s *ManualStrategy) Name() string { return ManualName }

// Description summarizes the strategy for API consumers.
func (s *ManualStrategy) Description() string {
	return "normalized edit-distance similarity between answer and reference"
}

// Evaluate scores the answer with the plain similarity measure.
func (s *ManualStrategy) Evaluate(_ context.Context, answer, reference string) (Result, error) {
	score := textsim.Similarity(answer, reference)
	return Result{
		Score:      score,
		Confidence: 1.0,
		Details: map[string]interface{}{
			"similarity": score,
		},
		EvaluatedAt: s.now(),
	}, nil
}

// SuitableFor always reports true; the default strategy handles any input.
func (s *ManualStrategy) SuitableFor(_, _ string) bool { return true }

// Confidence is always 1.0 for the default strategy.
func (s *ManualStrategy) Confidence() float64 { return 1.0 }
