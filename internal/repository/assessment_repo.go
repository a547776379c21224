package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/models"
)

// AssessmentStore is the read/write surface an assessment run needs. The same
// interface is satisfied by the root connection and by a transaction-scoped
// store, so orchestration code is oblivious to which one it holds.
type AssessmentStore interface {
	GetRecording(ctx context.Context, id uint) (models.Recording, error)
	GetRecordingResponses(ctx context.Context, recordingID uint) ([]models.Response, error)
	GetPassage(ctx context.Context, id uint) (models.Passage, error)
	SaveEvaluation(ctx context.Context, evaluation *models.Evaluation) error
	SaveAssessment(ctx context.Context, assessment *models.Assessment) error
	UpdateRecordingStatus(ctx context.Context, id uint, status models.RecordingStatus) error
}

// AssessmentRepository is the persistence gateway for assessment runs. Every
// write of one run happens inside a single InTransaction call; an error from
// the callback rolls the whole run back.
type AssessmentRepository interface {
	AssessmentStore
	InTransaction(ctx context.Context, fn func(tx AssessmentStore) error) error
	GetAssessment(ctx context.Context, id uint) (models.Assessment, error)
	GetEvaluationsForRecording(ctx context.Context, recordingID uint) ([]models.Evaluation, error)
	ListAssessmentsForPassage(ctx context.Context, passageID uint) ([]models.Assessment, error)
}

type assessmentRepository struct {
	assessmentStore
}

type assessmentStore struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{assessmentStore{db: db}}
}

func (r *assessmentRepository) InTransaction(ctx context.Context, fn func(tx AssessmentStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&assessmentStore{db: tx})
	})
}

func (r *assessmentRepository) GetAssessment(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) GetEvaluationsForRecording(ctx context.Context, recordingID uint) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("id ASC").
		Find(&evaluations).Error; err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (r *assessmentRepository) ListAssessmentsForPassage(ctx context.Context, passageID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.db.WithContext(ctx).
		Joins("JOIN recordings ON recordings.id = assessments.recording_id").
		Where("recordings.passage_id = ?", passageID).
		Order("assessments.id ASC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (s *assessmentStore) GetRecording(ctx context.Context, id uint) (models.Recording, error) {
	var recording models.Recording
	if err := s.db.WithContext(ctx).First(&recording, id).Error; err != nil {
		return models.Recording{}, err
	}

	return recording, nil
}

func (s *assessmentStore) GetRecordingResponses(ctx context.Context, recordingID uint) ([]models.Response, error) {
	var responses []models.Response
	if err := s.db.WithContext(ctx).
		Preload("Question").
		Where("recording_id = ?", recordingID).
		Order("id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

func (s *assessmentStore) GetPassage(ctx context.Context, id uint) (models.Passage, error) {
	var passage models.Passage
	if err := s.db.WithContext(ctx).Unscoped().First(&passage, id).Error; err != nil {
		return models.Passage{}, err
	}

	return passage, nil
}

func (s *assessmentStore) SaveEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	return s.db.WithContext(ctx).Create(evaluation).Error
}

func (s *assessmentStore) SaveAssessment(ctx context.Context, assessment *models.Assessment) error {
	return s.db.WithContext(ctx).Create(assessment).Error
}

func (s *assessmentStore) UpdateRecordingStatus(ctx context.Context, id uint, status models.RecordingStatus) error {
	update := s.db.WithContext(ctx).Model(&models.Recording{}).
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
