package models

import "time"

// RecordingStatus enumerates the lifecycle states of a recording.
type RecordingStatus string

const (
	// RecordingStatusPending indicates the recording awaits assessment.
	RecordingStatusPending RecordingStatus = "pending"
	// RecordingStatusAssessed indicates an assessment has been saved.
	RecordingStatusAssessed RecordingStatus = "assessed"
	// RecordingStatusCompleted is a terminal state.
	RecordingStatusCompleted RecordingStatus = "completed"
	// RecordingStatusOverdue is assignment tracking only; it never feeds assessment.
	RecordingStatusOverdue RecordingStatus = "overdue"
)

// recordingTransitions is the directional transition table; transitions are
// irreversible.
var recordingTransitions = map[RecordingStatus][]RecordingStatus{
	RecordingStatusPending:   {RecordingStatusAssessed, RecordingStatusCompleted},
	RecordingStatusAssessed:  {RecordingStatusCompleted},
	RecordingStatusCompleted: {},
	RecordingStatusOverdue:   {RecordingStatusCompleted},
}

// CanTransitionTo reports whether the transition table permits moving from s
// to target.
func (s RecordingStatus) CanTransitionTo(target RecordingStatus) bool {
	for _, allowed := range recordingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Recording is one attempt by a user at reading a passage and answering its
// questions.
type Recording struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PassageID       uint            `gorm:"not null;index" json:"passage_id"`
	AudioPath       string          `gorm:"size:512" json:"audio_path"`
	DurationSeconds float64         `gorm:"not null;default:0" json:"duration_seconds"`
	Status          RecordingStatus `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Passage         Passage         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"passage,omitempty"`
	Responses       []Response      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
}
