package dto

import (
	"time"

	"github.com/lectapp/lector-api/internal/models"
)

// PassageCreateRequest describes the payload for creating a passage.
type PassageCreateRequest struct {
	Title            string `json:"title" validate:"required,min=1,max=255"`
	Body             string `json:"body" validate:"required"`
	TimeLimitSeconds int    `json:"time_limit_seconds" validate:"gte=0"`
	Difficulty       int    `json:"difficulty" validate:"required,gte=1,lte=20"`
}

// PassageUpdateRequest carries optional passage updates.
type PassageUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=255"`
	Body             *string `json:"body" validate:"omitempty,min=1"`
	TimeLimitSeconds *int    `json:"time_limit_seconds" validate:"omitempty,gte=0"`
	Difficulty       *int    `json:"difficulty" validate:"omitempty,gte=1,lte=20"`
}

// QuestionCreateRequest describes the payload for adding a question to a passage.
type QuestionCreateRequest struct {
	Text            string   `json:"text" validate:"required"`
	ReferenceAnswer string   `json:"reference_answer" validate:"required"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// QuestionUpdateRequest carries optional question updates.
type QuestionUpdateRequest struct {
	Text            *string  `json:"text" validate:"omitempty,min=1"`
	ReferenceAnswer *string  `json:"reference_answer" validate:"omitempty,min=1"`
	Weight          *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// QuestionResponse serializes a question.
type QuestionResponse struct {
	ID              uint      `json:"id"`
	PassageID       uint      `json:"passage_id"`
	Text            string    `json:"text"`
	ReferenceAnswer string    `json:"reference_answer"`
	Weight          float64   `json:"weight"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// PassageResponse serializes a passage, optionally with its active questions.
type PassageResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Body             string             `json:"body"`
	TimeLimitSeconds int                `json:"time_limit_seconds"`
	Difficulty       int                `json:"difficulty"`
	CreatedBy        uint               `json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:              model.ID,
		PassageID:       model.PassageID,
		Text:            model.Text,
		ReferenceAnswer: model.ReferenceAnswer,
		Weight:          model.Weight,
		Active:          model.Active,
		CreatedAt:       model.CreatedAt,
	}
}

// NewPassageResponse converts a Passage model into a DTO.
func NewPassageResponse(model models.Passage) PassageResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, NewQuestionResponse(question))
	}

	return PassageResponse{
		ID:               model.ID,
		Title:            model.Title,
		Body:             model.Body,
		TimeLimitSeconds: model.TimeLimitSeconds,
		Difficulty:       model.Difficulty,
		CreatedBy:        model.CreatedBy,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
		Questions:        questions,
	}
}
