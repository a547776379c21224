package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/repository"
	"github.com/lectapp/lector-api/pkg/textsim"
)

// Answers at or above this similarity count as correct at submission time.
const correctnessThreshold = 90.0

// ErrResponseAlreadySubmitted indicates a response for this question already
// exists within the recording.
var ErrResponseAlreadySubmitted = errors.New("response already submitted for this question")

// ErrQuestionNotInPassage indicates the question belongs to another passage.
var ErrQuestionNotInPassage = errors.New("question does not belong to the recording's passage")

// ErrQuestionInactive indicates the question was deactivated.
var ErrQuestionInactive = errors.New("question is inactive")

// RecordingService exposes recording and response submission operations.
type RecordingService interface {
	Create(ctx context.Context, userID uint, payload dto.RecordingCreateRequest) (dto.RecordingResponse, error)
	Get(ctx context.Context, id uint) (dto.RecordingResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.RecordingResponse, error)
	SubmitResponse(ctx context.Context, recordingID uint, payload dto.ResponseSubmitRequest) (dto.AnswerResponse, error)
}

type recordingService struct {
	recordings repository.RecordingRepository
	passages   repository.PassageRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewRecordingService constructs the recording service.
func NewRecordingService(recordings repository.RecordingRepository, passages repository.PassageRepository, validate *validator.Validate, logger zerolog.Logger) RecordingService {
	return &recordingService{
		recordings: recordings,
		passages:   passages,
		validator:  validate,
		logger:     logger.With().Str("component", "recording_service").Logger(),
	}
}

func (s *recordingService) Create(ctx context.Context, userID uint, payload dto.RecordingCreateRequest) (dto.RecordingResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordingResponse{}, err
	}

	if _, err := s.passages.GetByID(ctx, payload.PassageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordingResponse{}, ErrPassageNotFound
		}
		return dto.RecordingResponse{}, err
	}

	recording := models.Recording{
		UserID:          userID,
		PassageID:       payload.PassageID,
		AudioPath:       strings.TrimSpace(payload.AudioPath),
		DurationSeconds: payload.DurationSeconds,
		Status:          models.RecordingStatusPending,
	}

	if err := s.recordings.Create(ctx, &recording); err != nil {
		return dto.RecordingResponse{}, err
	}

	return dto.NewRecordingResponse(recording), nil
}

func (s *recordingService) Get(ctx context.Context, id uint) (dto.RecordingResponse, error) {
	recording, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordingResponse{}, ErrRecordingNotFound
		}
		return dto.RecordingResponse{}, err
	}

	return dto.NewRecordingResponse(recording), nil
}

func (s *recordingService) ListByUser(ctx context.Context, userID uint) ([]dto.RecordingResponse, error) {
	recordings, err := s.recordings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.RecordingResponse, 0, len(recordings))
	for _, recording := range recordings {
		views = append(views, dto.NewRecordingResponse(recording))
	}
	return views, nil
}

// SubmitResponse records one answer to one question. The similarity, score
// and correctness computed here are fixed at submission time; evaluation
// re-runs write separate Evaluation rows and never touch them.
func (s *recordingService) SubmitResponse(ctx context.Context, recordingID uint, payload dto.ResponseSubmitRequest) (dto.AnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnswerResponse{}, err
	}

	recording, err := s.recordings.GetByID(ctx, recordingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnswerResponse{}, ErrRecordingNotFound
		}
		return dto.AnswerResponse{}, err
	}

	question, err := s.passages.GetQuestionByID(ctx, payload.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnswerResponse{}, ErrQuestionNotFound
		}
		return dto.AnswerResponse{}, err
	}
	if question.PassageID != recording.PassageID {
		return dto.AnswerResponse{}, ErrQuestionNotInPassage
	}
	if !question.Active {
		return dto.AnswerResponse{}, ErrQuestionInactive
	}

	exists, err := s.recordings.HasResponse(ctx, recordingID, payload.QuestionID)
	if err != nil {
		return dto.AnswerResponse{}, err
	}
	if exists {
		return dto.AnswerResponse{}, ErrResponseAlreadySubmitted
	}

	similarity := textsim.Similarity(payload.AnswerText, question.ReferenceAnswer)
	response := models.Response{
		RecordingID: recordingID,
		QuestionID:  payload.QuestionID,
		AnswerText:  payload.AnswerText,
		Similarity:  similarity,
		Score:       similarity,
		IsCorrect:   similarity >= correctnessThreshold,
	}

	if err := s.recordings.CreateResponse(ctx, &response); err != nil {
		return dto.AnswerResponse{}, err
	}

	return dto.NewAnswerResponse(response), nil
}
