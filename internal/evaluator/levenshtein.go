package evaluator

import (
	"context"
	"sync"
	"time"

	"github.com/lectapp/lector-api/pkg/textsim"
)

const (
	levenshteinMinLength = 3
	levenshteinMaxLength = 1000

	weightLength  = 0.30
	weightOverlap = 0.10
	weightExact   = 0.20
	weightEdit    = 0.40
)

// LevenshteinName is the registry name of the edit-distance strategy.
const LevenshteinName = "levenshtein"

// DefaultConfidenceFloor is applied when an input falls outside the length
// window the strategy is calibrated for.
const DefaultConfidenceFloor = 0.5

// LevenshteinStrategy combines four weighted sub-scores: length similarity,
// character-overlap similarity, an exact-match bonus and the core Levenshtein
// similarity. Confidence degrades to a configurable floor for inputs outside
// the calibrated length window.
type LevenshteinStrategy struct {
	confidenceFloor float64
	now             func() time.Time

	// One instance is shared across concurrent requests.
	mu             sync.Mutex
	lastConfidence float64
}

// NewLevenshteinStrategy builds the strategy with the given confidence floor.
// A floor outside (0,1] falls back to DefaultConfidenceFloor.
func NewLevenshteinStrategy(confidenceFloor float64) *LevenshteinStrategy {
	if confidenceFloor <= 0 || confidenceFloor > 1 {
		confidenceFloor = DefaultConfidenceFloor
	}
	return &LevenshteinStrategy{
		confidenceFloor: confidenceFloor,
		now:             time.Now,
	}
}

// Name identifies the strategy in the registry and in persisted evaluations.
func (s *LevenshteinStrategy) Name() string { return LevenshteinName }

// Description summarizes the strategy for API consumers.
func (s *LevenshteinStrategy) Description() string {
	return "weighted combination of length, character-overlap, exact-match and edit-distance similarity"
}

// Evaluate scores the answer against the reference. It never fails; the error
// return satisfies the Strategy contract.
func (s *LevenshteinStrategy) Evaluate(_ context.Context, answer, reference string) (Result, error) {
	normAnswer := textsim.NormalizeStrict(answer)
	normReference := textsim.NormalizeStrict(reference)

	lengthScore := lengthSimilarity(normAnswer, normReference)
	overlapScore := overlapSimilarity(normAnswer, normReference)
	exactScore := 0.0
	if normAnswer == normReference {
		exactScore = 100.0
	}
	editScore := textsim.SimilarityStrict(answer, reference)

	score := lengthScore*weightLength +
		overlapScore*weightOverlap +
		exactScore*weightExact +
		editScore*weightEdit

	confidence := s.confidence(normAnswer, normReference)
	s.mu.Lock()
	s.lastConfidence = confidence
	s.mu.Unlock()

	return Result{
		Score:      score,
		Confidence: confidence,
		Details: map[string]interface{}{
			"length_similarity":  lengthScore,
			"overlap_similarity": overlapScore,
			"exact_match":        exactScore == 100.0,
			"edit_similarity":    editScore,
		},
		EvaluatedAt: s.now(),
	}, nil
}

// SuitableFor reports whether both normalized inputs fall inside the length
// window the strategy is calibrated for.
func (s *LevenshteinStrategy) SuitableFor(answer, reference string) bool {
	return withinLengthWindow(textsim.NormalizeStrict(answer)) &&
		withinLengthWindow(textsim.NormalizeStrict(reference))
}

// Confidence returns the confidence of the most recent Evaluate call.
func (s *LevenshteinStrategy) Confidence() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastConfidence
}

func (s *LevenshteinStrategy) confidence(normAnswer, normReference string) float64 {
	if !withinLengthWindow(normAnswer) || !withinLengthWindow(normReference) {
		return s.confidenceFloor
	}

	la := len([]rune(normAnswer))
	lb := len([]rune(normReference))
	shortest, longest := la, lb
	if shortest > longest {
		shortest, longest = longest, shortest
	}
	if longest == 0 {
		return s.confidenceFloor
	}

	ratio := float64(shortest) / float64(longest)
	return s.confidenceFloor + (1-s.confidenceFloor)*ratio
}

func withinLengthWindow(s string) bool {
	length := len([]rune(s))
	return length >= levenshteinMinLength && length <= levenshteinMaxLength
}

func lengthSimilarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 100
	}
	shortest, longest := la, lb
	if shortest > longest {
		shortest, longest = longest, shortest
	}
	if longest == 0 {
		return 100
	}
	return 100 * float64(shortest) / float64(longest)
}

func overlapSimilarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	return 100 * float64(textsim.LongestCommonSubstring(a, b)) / float64(longest)
}
