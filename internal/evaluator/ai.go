package evaluator

import (
	"context"
	"time"
)

// AIName is the registry name reserved for the model-backed strategy.
const AIName = "ai"

// AIStrategy is a declared but unimplemented evaluator. It exists so the
// registry and configuration paths can be exercised before a model-backed
// implementation lands; every evaluation reports a not_implemented marker
// with zero score and zero confidence.
type AIStrategy struct {
	now func() time.Time
}

// NewAIStrategy builds the placeholder strategy.
func NewAIStrategy() *AIStrategy {
	return &AIStrategy{now: time.Now}
}

// Name identifies the strategy in the registry and in persisted evaluations.
func (s *AIStrategy) Name() string { return AIName }

// Description summarizes the strategy for API consumers.
func (s *AIStrategy) Description() string {
	return "model-backed answer evaluation (not implemented)"
}

// Evaluate reports the not_implemented marker; it never fails.
func (s *AIStrategy) Evaluate(_ context.Context, _, _ string) (Result, error) {
	return Result{
		Score:      0,
		Confidence: 0,
		Details: map[string]interface{}{
			"status": "not_implemented",
		},
		EvaluatedAt: s.now(),
	}, nil
}

// SuitableFor always reports false until the strategy is implemented.
func (s *AIStrategy) SuitableFor(_, _ string) bool { return false }

// Confidence is always 0 for the placeholder.
func (s *AIStrategy) Confidence() float64 { return 0 }
