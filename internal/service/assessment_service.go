package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/evaluator"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/observability"
	"github.com/lectapp/lector-api/internal/repository"
)

// ErrRecordingNotFound indicates the recording does not exist.
var ErrRecordingNotFound = errors.New("recording not found")

// ErrRecordingHasNoResponses indicates the recording has nothing to assess.
var ErrRecordingHasNoResponses = errors.New("recording has no responses")

// ErrNoValidEvaluatorTypes indicates none of the requested evaluator types is
// registered.
var ErrNoValidEvaluatorTypes = errors.New("no valid evaluator types requested")

// ErrAssessmentNotFound indicates the assessment does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// AssessedEvent is published after an assessment run commits.
type AssessedEvent struct {
	RecordingID     uint      `json:"recording_id"`
	AssessmentID    *uint     `json:"assessment_id,omitempty"`
	NormalizedScore float64   `json:"normalized_score"`
	CompletedAt     time.Time `json:"completed_at"`
}

// AssessmentService orchestrates evaluator runs over a recording's responses
// and persists the aggregated outcome atomically.
type AssessmentService interface {
	ProcessAssessment(ctx context.Context, recordingID uint, evaluatorTypes []string, assessedBy uint) dto.ProcessAssessmentResult
	GetAssessmentDetails(ctx context.Context, assessmentID uint) (*dto.AssessmentDetailsResponse, error)
	ListEvaluations(ctx context.Context, recordingID uint) ([]dto.EvaluationResponse, error)
	RegisterEvaluator(name string, strategy evaluator.Strategy)
	SetPrimaryEvaluator(name string) bool
}

type assessmentService struct {
	repo         repository.AssessmentRepository
	registry     *evaluator.Registry
	nats         *nats.Conn
	natsSubject  string
	audioTimeout time.Duration
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// AssessmentConfig carries the orchestrator's tunables.
type AssessmentConfig struct {
	AudioEvalTimeout time.Duration
	EventSubject     string
}

// NewAssessmentService constructs the orchestrator. The registry is owned by
// the caller; a nil NATS connection disables event publication.
func NewAssessmentService(repo repository.AssessmentRepository, registry *evaluator.Registry, natsConn *nats.Conn, cfg AssessmentConfig, logger zerolog.Logger) AssessmentService {
	timeout := cfg.AudioEvalTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	subject := cfg.EventSubject
	if subject == "" {
		subject = "lector.assessments.completed"
	}

	return &assessmentService{
		repo:         repo,
		registry:     registry,
		nats:         natsConn,
		natsSubject:  subject,
		audioTimeout: timeout,
		logger:       logger.With().Str("component", "assessment_service").Logger(),
		tracer:       otel.Tracer("github.com/lectapp/lector-api/internal/service/assessment"),
		now:          time.Now,
	}
}

type typeAggregate struct {
	totalScore    float64
	totalWeight   float64
	confidenceSum float64
	responseCount int
}

// dedupeTypes drops repeated evaluator types while keeping request order, so a
// repeated type cannot collide with the evaluation uniqueness guard.
func dedupeTypes(types []string) []string {
	seen := make(map[string]struct{}, len(types))
	out := make([]string, 0, len(types))
	for _, name := range types {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (s *assessmentService) ProcessAssessment(ctx context.Context, recordingID uint, evaluatorTypes []string, assessedBy uint) dto.ProcessAssessmentResult {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "assessment.process", trace.WithAttributes(
		attribute.Int64("assessment.recording_id", int64(recordingID)),
	))
	defer span.End()

	if len(evaluatorTypes) == 0 {
		evaluatorTypes = []string{s.registry.Primary()}
	}
	evaluatorTypes = dedupeTypes(evaluatorTypes)
	span.SetAttributes(attribute.StringSlice("assessment.evaluator_types", evaluatorTypes))

	var (
		assessmentID *uint
		aggregates   map[string]*typeAggregate
	)

	err := s.repo.InTransaction(ctx, func(tx repository.AssessmentStore) error {
		recording, err := tx.GetRecording(ctx, recordingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordingNotFound
			}
			return err
		}

		responses, err := tx.GetRecordingResponses(ctx, recordingID)
		if err != nil {
			return err
		}
		if len(responses) == 0 {
			return ErrRecordingHasNoResponses
		}

		aggregates = make(map[string]*typeAggregate, len(evaluatorTypes))

		for _, response := range responses {
			for _, evaluatorType := range evaluatorTypes {
				strategy, ok := s.registry.Resolve(evaluatorType)
				if !ok {
					s.logger.Warn().
						Str("evaluator_type", evaluatorType).
						Uint("recording_id", recordingID).
						Msg("requested evaluator type is not registered, skipping")
					continue
				}

				result, err := strategy.Evaluate(ctx, response.AnswerText, response.Question.ReferenceAnswer)
				if err != nil {
					return err
				}

				responseID := response.ID
				evaluation := models.Evaluation{
					RecordingID:    recordingID,
					ResponseID:     &responseID,
					EvaluatorType:  evaluatorType,
					EvaluationType: models.EvaluationTypeResponse,
					Score:          result.Score,
					Confidence:     result.Confidence,
					Details:        datatypes.JSONMap(result.Details),
				}
				if err := tx.SaveEvaluation(ctx, &evaluation); err != nil {
					return err
				}

				agg := aggregates[evaluatorType]
				if agg == nil {
					agg = &typeAggregate{}
					aggregates[evaluatorType] = agg
				}
				agg.totalScore += (result.Score / 100) * response.Question.Weight
				agg.totalWeight += response.Question.Weight
				agg.confidenceSum += result.Confidence
				agg.responseCount++
			}
		}

		if len(aggregates) == 0 {
			return ErrNoValidEvaluatorTypes
		}

		s.runAudioEvaluations(ctx, tx, recording, evaluatorTypes)

		primary := s.registry.Primary()
		agg, ok := aggregates[primary]
		if !ok || agg.responseCount == 0 {
			// The primary evaluator was not requested: evaluation rows are
			// committed but no assessment row is written. Callers relying on
			// an assessment must include the primary type.
			s.logger.Warn().
				Str("primary", primary).
				Strs("requested", evaluatorTypes).
				Uint("recording_id", recordingID).
				Msg("primary evaluator not among requested types, skipping assessment write")
			return nil
		}

		normalized := 0.0
		if agg.totalWeight > 0 {
			normalized = agg.totalScore / agg.totalWeight * 100
		}

		assessment := models.Assessment{
			RecordingID:     recordingID,
			TotalScore:      agg.totalScore,
			NormalizedScore: normalized,
			ConfidenceScore: agg.confidenceSum / float64(agg.responseCount),
			AssessedBy:      assessedBy,
			CompletedAt:     s.now(),
		}
		if err := tx.SaveAssessment(ctx, &assessment); err != nil {
			return err
		}
		assessmentID = &assessment.ID

		if recording.Status.CanTransitionTo(models.RecordingStatusAssessed) {
			if err := tx.UpdateRecordingStatus(ctx, recordingID, models.RecordingStatusAssessed); err != nil {
				return err
			}
		}

		return nil
	})

	observability.AssessmentLatency().Observe(s.now().Sub(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assessment_failed")
		observability.AssessmentRuns().WithLabelValues("failure").Inc()
		s.logger.Error().Err(err).Uint("recording_id", recordingID).Msg("assessment run rolled back")
		return dto.ProcessAssessmentResult{Success: false, Error: err.Error()}
	}

	observability.AssessmentRuns().WithLabelValues("success").Inc()

	results := make(map[string]dto.EvaluatorAggregate, len(aggregates))
	for evaluatorType, agg := range aggregates {
		normalized := 0.0
		if agg.totalWeight > 0 {
			normalized = agg.totalScore / agg.totalWeight * 100
		}
		averageConfidence := 0.0
		if agg.responseCount > 0 {
			averageConfidence = agg.confidenceSum / float64(agg.responseCount)
		}
		results[evaluatorType] = dto.EvaluatorAggregate{
			TotalScore:        agg.totalScore,
			TotalWeight:       agg.totalWeight,
			NormalizedScore:   normalized,
			AverageConfidence: averageConfidence,
			ResponseCount:     agg.responseCount,
		}
	}

	if assessmentID != nil {
		span.SetAttributes(attribute.Int64("assessment.id", int64(*assessmentID)))
	}

	s.publishAssessedEvent(recordingID, assessmentID, results)

	return dto.ProcessAssessmentResult{
		Success:      true,
		AssessmentID: assessmentID,
		Results:      results,
	}
}

// runAudioEvaluations scores the raw audio with every requested strategy that
// implements the AudioEvaluator capability. A timeout, error or missing
// result yields no audio evaluation and never aborts the assessment run.
func (s *assessmentService) runAudioEvaluations(ctx context.Context, tx repository.AssessmentStore, recording models.Recording, evaluatorTypes []string) {
	var passageText string
	passageLoaded := false

	for _, evaluatorType := range evaluatorTypes {
		strategy, ok := s.registry.Resolve(evaluatorType)
		if !ok {
			continue
		}
		audioEval, ok := strategy.(evaluator.AudioEvaluator)
		if !ok {
			continue
		}

		if !passageLoaded {
			passage, err := tx.GetPassage(ctx, recording.PassageID)
			if err != nil {
				s.logger.Warn().Err(err).
					Uint("passage_id", recording.PassageID).
					Msg("passage lookup failed, skipping audio evaluations")
				return
			}
			passageText = passage.Body
			passageLoaded = true
		}

		audioCtx, cancel := context.WithTimeout(ctx, s.audioTimeout)
		result, err := audioEval.EvaluateAudio(audioCtx, recording.AudioPath, passageText)
		cancel()
		if err != nil {
			s.logger.Warn().Err(err).
				Str("evaluator_type", evaluatorType).
				Uint("recording_id", recording.ID).
				Msg("audio evaluation produced no result")
			continue
		}

		evaluation := models.Evaluation{
			RecordingID:    recording.ID,
			ResponseID:     nil,
			EvaluatorType:  evaluatorType,
			EvaluationType: models.EvaluationTypeAudio,
			Score:          result.Score,
			Confidence:     result.Confidence,
			Details:        datatypes.JSONMap(result.Details),
		}
		if err := tx.SaveEvaluation(ctx, &evaluation); err != nil {
			s.logger.Warn().Err(err).
				Str("evaluator_type", evaluatorType).
				Uint("recording_id", recording.ID).
				Msg("failed to persist audio evaluation")
		}
	}
}

func (s *assessmentService) publishAssessedEvent(recordingID uint, assessmentID *uint, results map[string]dto.EvaluatorAggregate) {
	if s.nats == nil {
		return
	}

	event := AssessedEvent{
		RecordingID:  recordingID,
		AssessmentID: assessmentID,
		CompletedAt:  s.now(),
	}
	if primary, ok := results[s.registry.Primary()]; ok {
		event.NormalizedScore = primary.NormalizedScore
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("recording_id", recordingID).Msg("failed to publish assessed event")
	}
}

func (s *assessmentService) GetAssessmentDetails(ctx context.Context, assessmentID uint) (*dto.AssessmentDetailsResponse, error) {
	assessment, err := s.repo.GetAssessment(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	evaluations, err := s.repo.GetEvaluationsForRecording(ctx, assessment.RecordingID)
	if err != nil {
		return nil, err
	}

	partition := dto.EvaluationPartition{
		Responses: make(map[uint]map[string]dto.EvaluationResponse),
		Audio:     make(map[string]dto.EvaluationResponse),
	}
	for _, evaluation := range evaluations {
		view := dto.NewEvaluationResponse(evaluation)
		if evaluation.ResponseID == nil {
			partition.Audio[evaluation.EvaluatorType] = view
			continue
		}
		byType := partition.Responses[*evaluation.ResponseID]
		if byType == nil {
			byType = make(map[string]dto.EvaluationResponse)
			partition.Responses[*evaluation.ResponseID] = byType
		}
		byType[evaluation.EvaluatorType] = view
	}

	return &dto.AssessmentDetailsResponse{
		Assessment:  dto.NewAssessmentResponse(assessment),
		Evaluations: partition,
	}, nil
}

func (s *assessmentService) ListEvaluations(ctx context.Context, recordingID uint) ([]dto.EvaluationResponse, error) {
	evaluations, err := s.repo.GetEvaluationsForRecording(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		views = append(views, dto.NewEvaluationResponse(evaluation))
	}
	return views, nil
}

func (s *assessmentService) RegisterEvaluator(name string, strategy evaluator.Strategy) {
	s.registry.Register(name, strategy)
}

func (s *assessmentService) SetPrimaryEvaluator(name string) bool {
	return s.registry.SetPrimary(name)
}
