package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/repository"
)

// ErrPassageNotFound indicates the passage does not exist or was deleted.
var ErrPassageNotFound = errors.New("passage not found")

// ErrQuestionNotFound indicates the question does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// ErrPassageBodyEmpty indicates the passage body is empty after sanitization.
var ErrPassageBodyEmpty = errors.New("passage body empty after sanitization")

// PassageService exposes passage and question management.
type PassageService interface {
	List(ctx context.Context, filter repository.PassageFilter) ([]dto.PassageResponse, error)
	Get(ctx context.Context, id uint) (dto.PassageResponse, error)
	Create(ctx context.Context, createdBy uint, payload dto.PassageCreateRequest) (dto.PassageResponse, error)
	Update(ctx context.Context, id uint, payload dto.PassageUpdateRequest) (dto.PassageResponse, error)
	Delete(ctx context.Context, id uint) error

	AddQuestion(ctx context.Context, passageID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error)
	RemoveQuestion(ctx context.Context, questionID uint) error
}

type passageService struct {
	repo      repository.PassageRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewPassageService constructs the passage service.
func NewPassageService(repo repository.PassageRepository, validate *validator.Validate, logger zerolog.Logger) PassageService {
	return &passageService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "passage_service").Logger(),
	}
}

func (s *passageService) List(ctx context.Context, filter repository.PassageFilter) ([]dto.PassageResponse, error) {
	passages, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]dto.PassageResponse, 0, len(passages))
	for _, passage := range passages {
		views = append(views, dto.NewPassageResponse(passage))
	}
	return views, nil
}

func (s *passageService) Get(ctx context.Context, id uint) (dto.PassageResponse, error) {
	passage, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PassageResponse{}, ErrPassageNotFound
		}
		return dto.PassageResponse{}, err
	}

	return dto.NewPassageResponse(passage), nil
}

func (s *passageService) Create(ctx context.Context, createdBy uint, payload dto.PassageCreateRequest) (dto.PassageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PassageResponse{}, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return dto.PassageResponse{}, ErrPassageBodyEmpty
	}

	passage := models.Passage{
		Title:            strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Body:             body,
		TimeLimitSeconds: payload.TimeLimitSeconds,
		Difficulty:       payload.Difficulty,
		CreatedBy:        createdBy,
	}

	if err := s.repo.Create(ctx, &passage); err != nil {
		return dto.PassageResponse{}, err
	}

	return dto.NewPassageResponse(passage), nil
}

func (s *passageService) Update(ctx context.Context, id uint, payload dto.PassageUpdateRequest) (dto.PassageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PassageResponse{}, err
	}

	passage, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PassageResponse{}, ErrPassageNotFound
		}
		return dto.PassageResponse{}, err
	}

	if payload.Title != nil {
		passage.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Body != nil {
		body := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Body))
		if body == "" {
			return dto.PassageResponse{}, ErrPassageBodyEmpty
		}
		passage.Body = body
	}
	if payload.TimeLimitSeconds != nil {
		passage.TimeLimitSeconds = *payload.TimeLimitSeconds
	}
	if payload.Difficulty != nil {
		passage.Difficulty = *payload.Difficulty
	}

	if err := s.repo.Update(ctx, &passage); err != nil {
		return dto.PassageResponse{}, err
	}

	return dto.NewPassageResponse(passage), nil
}

func (s *passageService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPassageNotFound
		}
		return err
	}
	return nil
}

func (s *passageService) AddQuestion(ctx context.Context, passageID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if _, err := s.repo.GetByID(ctx, passageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrPassageNotFound
		}
		return dto.QuestionResponse{}, err
	}

	weight := 1.0
	if payload.Weight != nil {
		weight = *payload.Weight
	}

	question := models.Question{
		PassageID:       passageID,
		Text:            strings.TrimSpace(s.sanitizer.Sanitize(payload.Text)),
		ReferenceAnswer: strings.TrimSpace(payload.ReferenceAnswer),
		Weight:          weight,
		Active:          true,
	}

	if err := s.repo.CreateQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *passageService) UpdateQuestion(ctx context.Context, questionID uint, payload dto.QuestionUpdateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if payload.Text != nil {
		question.Text = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Text))
	}
	if payload.ReferenceAnswer != nil {
		question.ReferenceAnswer = strings.TrimSpace(*payload.ReferenceAnswer)
	}
	if payload.Weight != nil {
		question.Weight = *payload.Weight
	}

	if err := s.repo.UpdateQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

// RemoveQuestion deactivates a question that already has responses, keeping
// referential integrity, and hard-deletes one that has none.
func (s *passageService) RemoveQuestion(ctx context.Context, questionID uint) error {
	count, err := s.repo.CountQuestionResponses(ctx, questionID)
	if err != nil {
		return err
	}

	if count > 0 {
		err = s.repo.DeactivateQuestion(ctx, questionID)
	} else {
		err = s.repo.DeleteQuestion(ctx, questionID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	return nil
}
