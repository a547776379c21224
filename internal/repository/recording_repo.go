package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/models"
)

// RecordingRepository defines data operations for recordings and their
// responses.
type RecordingRepository interface {
	Create(ctx context.Context, recording *models.Recording) error
	GetByID(ctx context.Context, id uint) (models.Recording, error)
	ListByPassage(ctx context.Context, passageID uint) ([]models.Recording, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Recording, error)
	UpdateStatus(ctx context.Context, id uint, status models.RecordingStatus) error

	CreateResponse(ctx context.Context, response *models.Response) error
	GetResponses(ctx context.Context, recordingID uint) ([]models.Response, error)
	HasResponse(ctx context.Context, recordingID, questionID uint) (bool, error)
}

type recordingRepository struct {
	db *gorm.DB
}

// NewRecordingRepository instantiates the repository.
func NewRecordingRepository(db *gorm.DB) RecordingRepository {
	return &recordingRepository{db: db}
}

func (r *recordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	return r.db.WithContext(ctx).Create(recording).Error
}

func (r *recordingRepository) GetByID(ctx context.Context, id uint) (models.Recording, error) {
	var recording models.Recording
	if err := r.db.WithContext(ctx).
		Preload("Responses").
		Preload("Responses.Question").
		First(&recording, id).Error; err != nil {
		return models.Recording{}, err
	}

	return recording, nil
}

func (r *recordingRepository) ListByPassage(ctx context.Context, passageID uint) ([]models.Recording, error) {
	var recordings []models.Recording
	if err := r.db.WithContext(ctx).
		Where("passage_id = ?", passageID).
		Order("created_at DESC").
		Find(&recordings).Error; err != nil {
		return nil, err
	}

	return recordings, nil
}

func (r *recordingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Recording, error) {
	var recordings []models.Recording
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recordings).Error; err != nil {
		return nil, err
	}

	return recordings, nil
}

func (r *recordingRepository) UpdateStatus(ctx context.Context, id uint, status models.RecordingStatus) error {
	update := r.db.WithContext(ctx).Model(&models.Recording{}).
		Where("id = ?", id).
		Update("status", status)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recordingRepository) CreateResponse(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *recordingRepository) GetResponses(ctx context.Context, recordingID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).
		Preload("Question").
		Where("recording_id = ?", recordingID).
		Order("id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (r *recordingRepository) HasResponse(ctx context.Context, recordingID, questionID uint) (bool, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Where("question_id = ?", questionID).
		First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
