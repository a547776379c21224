package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvaluationType distinguishes per-response evaluations from audio-level ones.
const (
	EvaluationTypeResponse = "response"
	EvaluationTypeAudio    = "audio"
)

// Evaluation is the result of one strategy scoring either one response or,
// when ResponseID is nil, the whole recording's audio. The composite unique
// index guards concurrent assessment runs against duplicating rows for the
// same (response, evaluator, kind) triple.
type Evaluation struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	RecordingID    uint              `gorm:"not null;index" json:"recording_id"`
	ResponseID     *uint             `gorm:"index:idx_evaluation_response_evaluator,unique" json:"response_id"`
	EvaluatorType  string            `gorm:"size:64;not null;index:idx_evaluation_response_evaluator,unique" json:"evaluator_type"`
	EvaluationType string            `gorm:"size:32;not null;default:response;index:idx_evaluation_response_evaluator,unique" json:"evaluation_type"`
	Score          float64           `gorm:"not null" json:"score"`
	Confidence     float64           `gorm:"not null" json:"confidence"`
	Details        datatypes.JSONMap `json:"details"`
	CreatedAt      time.Time         `json:"created_at"`
}
