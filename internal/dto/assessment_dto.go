package dto

import (
	"time"

	"github.com/lectapp/lector-api/internal/models"
)

// ProcessAssessmentRequest optionally names the evaluator types to run. When
// empty, only the primary evaluator runs.
type ProcessAssessmentRequest struct {
	EvaluatorTypes []string `json:"evaluator_types" validate:"omitempty,dive,min=1"`
}

// EvaluatorAggregate is one evaluator type's accumulated result over a
// recording's responses. TotalScore is the fold of fractional score times
// question weight, kept unnormalized so callers can reproduce the exact
// weighted-average arithmetic.
type EvaluatorAggregate struct {
	TotalScore        float64 `json:"total_score"`
	TotalWeight       float64 `json:"total_weight"`
	NormalizedScore   float64 `json:"normalized_score"`
	AverageConfidence float64 `json:"average_confidence"`
	ResponseCount     int     `json:"response_count"`
}

// ProcessAssessmentResult is the reported outcome of one assessment run. A
// failed run is reported, not fatal; Error carries the reason.
type ProcessAssessmentResult struct {
	Success      bool                          `json:"success"`
	AssessmentID *uint                         `json:"assessment_id,omitempty"`
	Results      map[string]EvaluatorAggregate `json:"results,omitempty"`
	Error        string                        `json:"error,omitempty"`
}

// EvaluationResponse serializes one evaluation row.
type EvaluationResponse struct {
	ID             uint                   `json:"id"`
	RecordingID    uint                   `json:"recording_id"`
	ResponseID     *uint                  `json:"response_id"`
	EvaluatorType  string                 `json:"evaluator_type"`
	EvaluationType string                 `json:"evaluation_type"`
	Score          float64                `json:"score"`
	Confidence     float64                `json:"confidence"`
	Details        map[string]interface{} `json:"details,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// AssessmentResponse serializes the canonical assessment row.
type AssessmentResponse struct {
	ID              uint      `json:"id"`
	RecordingID     uint      `json:"recording_id"`
	TotalScore      float64   `json:"total_score"`
	NormalizedScore float64   `json:"normalized_score"`
	ConfidenceScore float64   `json:"confidence_score"`
	AssessedBy      uint      `json:"assessed_by"`
	CompletedAt     time.Time `json:"completed_at"`
}

// EvaluationPartition groups a recording's evaluations by target: per-response
// evaluations keyed by response then evaluator type, and audio-level
// evaluations keyed by evaluator type.
type EvaluationPartition struct {
	Responses map[uint]map[string]EvaluationResponse `json:"responses"`
	Audio     map[string]EvaluationResponse          `json:"audio"`
}

// AssessmentDetailsResponse bundles an assessment with its partitioned
// evaluations.
type AssessmentDetailsResponse struct {
	Assessment  AssessmentResponse  `json:"assessment"`
	Evaluations EvaluationPartition `json:"evaluations"`
}

// NewEvaluationResponse converts an Evaluation model into a DTO.
func NewEvaluationResponse(model models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:             model.ID,
		RecordingID:    model.RecordingID,
		ResponseID:     model.ResponseID,
		EvaluatorType:  model.EvaluatorType,
		EvaluationType: model.EvaluationType,
		Score:          model.Score,
		Confidence:     model.Confidence,
		Details:        map[string]interface{}(model.Details),
		CreatedAt:      model.CreatedAt,
	}
}

// NewAssessmentResponse converts an Assessment model into a DTO.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:              model.ID,
		RecordingID:     model.RecordingID,
		TotalScore:      model.TotalScore,
		NormalizedScore: model.NormalizedScore,
		ConfidenceScore: model.ConfidenceScore,
		AssessedBy:      model.AssessedBy,
		CompletedAt:     model.CompletedAt,
	}
}
