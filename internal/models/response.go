package models

import "time"

// Response is one user answer to one question within one recording. It is
// created once per (recording, question) pair at submission time; evaluation
// re-runs never overwrite its score or similarity, they write separate
// Evaluation rows.
type Response struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecordingID uint      `gorm:"not null;index:idx_response_recording_question,unique" json:"recording_id"`
	QuestionID  uint      `gorm:"not null;index:idx_response_recording_question,unique" json:"question_id"`
	AnswerText  string    `gorm:"type:text" json:"answer_text"`
	IsCorrect   bool      `gorm:"not null;default:false" json:"is_correct"`
	Score       float64   `gorm:"not null;default:0" json:"score"`
	Similarity  float64   `gorm:"not null;default:0" json:"similarity"`
	CreatedAt   time.Time `json:"created_at"`
	Question    Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question,omitempty"`
}
