// Package evaluator contains the pluggable answer-scoring strategies and the
// registry that resolves them by name.
package evaluator

import (
	"context"
	"time"
)

// Result is the structured outcome of scoring one answer against its
// reference answer.
type Result struct {
	Score       float64                `json:"score"`
	Confidence  float64                `json:"confidence"`
	Details     map[string]interface{} `json:"details,omitempty"`
	EvaluatedAt time.Time              `json:"evaluated_at"`
}

// Strategy scores a submitted answer against a reference answer. Score is in
// [0,100]; Confidence is in [0,1] and reports how trustworthy the score is,
// independent of its value.
type Strategy interface {
	Evaluate(ctx context.Context, answer, reference string) (Result, error)
	SuitableFor(answer, reference string) bool
	Confidence() float64
	Name() string
	Description() string
}

// AudioEvaluator is an optional capability a Strategy may implement to score a
// recording's raw audio against the passage text. Support is resolved once via
// a type assertion, not checked per call.
type AudioEvaluator interface {
	EvaluateAudio(ctx context.Context, audioPath, passageText string) (Result, error)
}
