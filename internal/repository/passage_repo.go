package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/models"
)

// PassageFilter narrows passage listings.
type PassageFilter struct {
	CreatedBy  *uint
	Difficulty *int
}

// PassageRepository defines data operations for passages and their questions.
type PassageRepository interface {
	List(ctx context.Context, filter PassageFilter) ([]models.Passage, error)
	GetByID(ctx context.Context, id uint) (models.Passage, error)
	Create(ctx context.Context, passage *models.Passage) error
	Update(ctx context.Context, passage *models.Passage) error
	SoftDelete(ctx context.Context, id uint) error

	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestionByID(ctx context.Context, id uint) (models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id uint) error
	DeactivateQuestion(ctx context.Context, id uint) error
	CountQuestionResponses(ctx context.Context, questionID uint) (int64, error)
}

type passageRepository struct {
	db *gorm.DB
}

// NewPassageRepository instantiates the repository.
func NewPassageRepository(db *gorm.DB) PassageRepository {
	return &passageRepository{db: db}
}

func (r *passageRepository) List(ctx context.Context, filter PassageFilter) ([]models.Passage, error) {
	query := r.db.WithContext(ctx).Model(&models.Passage{})

	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Difficulty != nil {
		query = query.Where("difficulty = ?", *filter.Difficulty)
	}

	var passages []models.Passage
	if err := query.Order("created_at DESC").Find(&passages).Error; err != nil {
		return nil, err
	}

	return passages, nil
}

func (r *passageRepository) GetByID(ctx context.Context, id uint) (models.Passage, error) {
	var passage models.Passage
	if err := r.db.WithContext(ctx).
		Preload("Questions", "active = ?", true).
		First(&passage, id).Error; err != nil {
		return models.Passage{}, err
	}

	return passage, nil
}

func (r *passageRepository) Create(ctx context.Context, passage *models.Passage) error {
	return r.db.WithContext(ctx).Create(passage).Error
}

func (r *passageRepository) Update(ctx context.Context, passage *models.Passage) error {
	return r.db.WithContext(ctx).Save(passage).Error
}

func (r *passageRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Passage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *passageRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *passageRepository) GetQuestionByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *passageRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *passageRepository) DeleteQuestion(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *passageRepository) DeactivateQuestion(ctx context.Context, id uint) error {
	update := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		Update("active", false)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *passageRepository) CountQuestionResponses(ctx context.Context, questionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Where("question_id = ?", questionID).
		Count(&count).Error
	return count, err
}
