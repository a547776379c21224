package models

import "time"

// Assessment is the canonical persisted outcome for a recording, produced
// from the primary evaluator's aggregated results. The schema permits
// multiple assessments per recording over time; the newest is authoritative.
type Assessment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RecordingID     uint      `gorm:"not null;index" json:"recording_id"`
	TotalScore      float64   `gorm:"not null" json:"total_score"`
	NormalizedScore float64   `gorm:"not null" json:"normalized_score"`
	ConfidenceScore float64   `gorm:"not null;default:0" json:"confidence_score"`
	AssessedBy      uint      `gorm:"not null" json:"assessed_by"`
	CompletedAt     time.Time `json:"completed_at"`
	CreatedAt       time.Time `json:"created_at"`
}
