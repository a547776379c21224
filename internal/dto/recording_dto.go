package dto

import (
	"time"

	"github.com/lectapp/lector-api/internal/models"
)

// RecordingCreateRequest describes the payload for starting a recording.
type RecordingCreateRequest struct {
	PassageID       uint    `json:"passage_id" validate:"required,gt=0"`
	AudioPath       string  `json:"audio_path" validate:"omitempty,max=512"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0"`
}

// ResponseSubmitRequest describes one typed answer to one question.
type ResponseSubmitRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	AnswerText string `json:"answer_text" validate:"required"`
}

// AnswerResponse serializes one submitted response.
type AnswerResponse struct {
	ID          uint      `json:"id"`
	RecordingID uint      `json:"recording_id"`
	QuestionID  uint      `json:"question_id"`
	AnswerText  string    `json:"answer_text"`
	IsCorrect   bool      `json:"is_correct"`
	Score       float64   `json:"score"`
	Similarity  float64   `json:"similarity"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordingResponse serializes a recording, optionally with its responses.
type RecordingResponse struct {
	ID              uint             `json:"id"`
	UserID          uint             `json:"user_id"`
	PassageID       uint             `json:"passage_id"`
	AudioPath       string           `json:"audio_path"`
	DurationSeconds float64          `json:"duration_seconds"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Responses       []AnswerResponse `json:"responses,omitempty"`
}

// NewAnswerResponse converts a Response model into a DTO.
func NewAnswerResponse(model models.Response) AnswerResponse {
	return AnswerResponse{
		ID:          model.ID,
		RecordingID: model.RecordingID,
		QuestionID:  model.QuestionID,
		AnswerText:  model.AnswerText,
		IsCorrect:   model.IsCorrect,
		Score:       model.Score,
		Similarity:  model.Similarity,
		CreatedAt:   model.CreatedAt,
	}
}

// NewRecordingResponse converts a Recording model into a DTO.
func NewRecordingResponse(model models.Recording) RecordingResponse {
	responses := make([]AnswerResponse, 0, len(model.Responses))
	for _, response := range model.Responses {
		responses = append(responses, NewAnswerResponse(response))
	}

	return RecordingResponse{
		ID:              model.ID,
		UserID:          model.UserID,
		PassageID:       model.PassageID,
		AudioPath:       model.AudioPath,
		DurationSeconds: model.DurationSeconds,
		Status:          string(model.Status),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		Responses:       responses,
	}
}
