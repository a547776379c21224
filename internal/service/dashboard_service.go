package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/repository"
)

// DashboardService produces aggregated per-passage assessment metrics.
type DashboardService interface {
	GetPassageSummary(ctx context.Context, passageID uint) (dto.PassageSummaryResponse, error)
}

type dashboardService struct {
	passages    repository.PassageRepository
	recordings  repository.RecordingRepository
	assessments repository.AssessmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator. A nil cache disables
// caching.
func NewDashboardService(passages repository.PassageRepository, recordings repository.RecordingRepository, assessments repository.AssessmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		passages:    passages,
		recordings:  recordings,
		assessments: assessments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) GetPassageSummary(ctx context.Context, passageID uint) (dto.PassageSummaryResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:passage:%d", passageID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var summary dto.PassageSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				summary.CacheHit = true
				s.logger.Debug().Uint("passage_id", passageID).Msg("passage summary cache hit")
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read passage summary cache")
		}
	}

	passage, err := s.passages.GetByID(ctx, passageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PassageSummaryResponse{}, ErrPassageNotFound
		}
		return dto.PassageSummaryResponse{}, err
	}

	recordings, err := s.recordings.ListByPassage(ctx, passageID)
	if err != nil {
		return dto.PassageSummaryResponse{}, err
	}

	assessments, err := s.assessments.ListAssessmentsForPassage(ctx, passageID)
	if err != nil {
		return dto.PassageSummaryResponse{}, err
	}

	summary := s.buildSummary(passage, recordings, assessments)

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store passage summary cache")
			}
		}
	}

	return summary, nil
}

func (s *dashboardService) buildSummary(passage models.Passage, recordings []models.Recording, assessments []models.Assessment) dto.PassageSummaryResponse {
	assessed := 0
	for _, recording := range recordings {
		if recording.Status == models.RecordingStatusAssessed || recording.Status == models.RecordingStatusCompleted {
			assessed++
		}
	}

	// Only the newest assessment per recording feeds the average.
	latest := make(map[uint]models.Assessment, len(assessments))
	for _, assessment := range assessments {
		latest[assessment.RecordingID] = assessment
	}

	var scoreSum float64
	for _, assessment := range latest {
		scoreSum += assessment.NormalizedScore
	}
	average := 0.0
	if len(latest) > 0 {
		average = scoreSum / float64(len(latest))
	}

	return dto.PassageSummaryResponse{
		PassageID:              passage.ID,
		Title:                  passage.Title,
		Recordings:             len(recordings),
		Assessed:               assessed,
		AverageNormalizedScore: average,
		GeneratedAt:            s.now().UTC(),
	}
}
