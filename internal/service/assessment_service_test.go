package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/evaluator"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/repository"
)

// fakeAssessmentRepo buffers writes and discards everything written inside a
// failed InTransaction callback, mirroring the rollback semantics of the real
// gateway.
type fakeAssessmentRepo struct {
	recording *models.Recording
	responses []models.Response
	passage   *models.Passage

	evaluations []models.Evaluation
	assessments []models.Assessment

	failSaveAssessment bool
	failSaveEvaluation bool
	nextID             uint
}

func (f *fakeAssessmentRepo) InTransaction(_ context.Context, fn func(tx repository.AssessmentStore) error) error {
	evalSnapshot := append([]models.Evaluation(nil), f.evaluations...)
	assessSnapshot := append([]models.Assessment(nil), f.assessments...)
	var statusSnapshot models.RecordingStatus
	if f.recording != nil {
		statusSnapshot = f.recording.Status
	}

	if err := fn(f); err != nil {
		f.evaluations = evalSnapshot
		f.assessments = assessSnapshot
		if f.recording != nil {
			f.recording.Status = statusSnapshot
		}
		return err
	}
	return nil
}

func (f *fakeAssessmentRepo) GetRecording(_ context.Context, id uint) (models.Recording, error) {
	if f.recording == nil || f.recording.ID != id {
		return models.Recording{}, gorm.ErrRecordNotFound
	}
	return *f.recording, nil
}

func (f *fakeAssessmentRepo) GetRecordingResponses(_ context.Context, recordingID uint) ([]models.Response, error) {
	var out []models.Response
	for _, response := range f.responses {
		if response.RecordingID == recordingID {
			out = append(out, response)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) GetPassage(_ context.Context, id uint) (models.Passage, error) {
	if f.passage == nil || f.passage.ID != id {
		return models.Passage{}, gorm.ErrRecordNotFound
	}
	return *f.passage, nil
}

func (f *fakeAssessmentRepo) SaveEvaluation(_ context.Context, evaluation *models.Evaluation) error {
	if f.failSaveEvaluation {
		return errors.New("evaluation write failed")
	}
	f.nextID++
	evaluation.ID = f.nextID
	f.evaluations = append(f.evaluations, *evaluation)
	return nil
}

func (f *fakeAssessmentRepo) SaveAssessment(_ context.Context, assessment *models.Assessment) error {
	if f.failSaveAssessment {
		return errors.New("assessment write failed")
	}
	f.nextID++
	assessment.ID = f.nextID
	f.assessments = append(f.assessments, *assessment)
	return nil
}

func (f *fakeAssessmentRepo) UpdateRecordingStatus(_ context.Context, id uint, status models.RecordingStatus) error {
	if f.recording == nil || f.recording.ID != id {
		return gorm.ErrRecordNotFound
	}
	f.recording.Status = status
	return nil
}

func (f *fakeAssessmentRepo) GetAssessment(_ context.Context, id uint) (models.Assessment, error) {
	for _, assessment := range f.assessments {
		if assessment.ID == id {
			return assessment, nil
		}
	}
	return models.Assessment{}, gorm.ErrRecordNotFound
}

func (f *fakeAssessmentRepo) GetEvaluationsForRecording(_ context.Context, recordingID uint) ([]models.Evaluation, error) {
	var out []models.Evaluation
	for _, evaluation := range f.evaluations {
		if evaluation.RecordingID == recordingID {
			out = append(out, evaluation)
		}
	}
	return out, nil
}

func (f *fakeAssessmentRepo) ListAssessmentsForPassage(_ context.Context, _ uint) ([]models.Assessment, error) {
	return append([]models.Assessment(nil), f.assessments...), nil
}

// stubStrategy returns a fixed score for exact matches and zero otherwise,
// with a fixed confidence.
type stubStrategy struct {
	name       string
	confidence float64
	err        error
}

func (s stubStrategy) Evaluate(_ context.Context, answer, reference string) (evaluator.Result, error) {
	if s.err != nil {
		return evaluator.Result{}, s.err
	}
	score := 0.0
	if answer == reference {
		score = 100.0
	}
	return evaluator.Result{Score: score, Confidence: s.confidence, EvaluatedAt: time.Now()}, nil
}

func (s stubStrategy) SuitableFor(_, _ string) bool { return true }
func (s stubStrategy) Confidence() float64          { return s.confidence }
func (s stubStrategy) Name() string                 { return s.name }
func (s stubStrategy) Description() string          { return "stub" }

// audioStubStrategy additionally supports audio evaluation.
type audioStubStrategy struct {
	stubStrategy
	audioScore float64
	audioErr   error
}

func (s audioStubStrategy) EvaluateAudio(_ context.Context, _, _ string) (evaluator.Result, error) {
	if s.audioErr != nil {
		return evaluator.Result{}, s.audioErr
	}
	return evaluator.Result{Score: s.audioScore, Confidence: 0.8, EvaluatedAt: time.Now()}, nil
}

func newTestRepo(weights []float64, answers, references []string) *fakeAssessmentRepo {
	repo := &fakeAssessmentRepo{
		recording: &models.Recording{ID: 1, PassageID: 7, UserID: 3, AudioPath: "/audio/1.wav", Status: models.RecordingStatusPending},
		passage:   &models.Passage{ID: 7, Title: "The Sky", Body: "The sky is blue and the grass is green."},
	}
	for i := range weights {
		repo.responses = append(repo.responses, models.Response{
			ID:          uint(100 + i),
			RecordingID: 1,
			QuestionID:  uint(10 + i),
			AnswerText:  answers[i],
			Question: models.Question{
				ID:              uint(10 + i),
				PassageID:       7,
				ReferenceAnswer: references[i],
				Weight:          weights[i],
				Active:          true,
			},
		})
	}
	return repo
}

func newTestService(repo repository.AssessmentRepository, registry *evaluator.Registry) AssessmentService {
	return NewAssessmentService(repo, registry, nil, AssessmentConfig{AudioEvalTimeout: 100 * time.Millisecond}, testLogger())
}

func TestProcessAssessmentWeightedAggregation(t *testing.T) {
	repo := newTestRepo(
		[]float64{2, 1, 1},
		[]string{"right", "wrong", "also wrong"},
		[]string{"right", "expected", "expected"},
	)
	registry := evaluator.NewRegistry()
	registry.Register(evaluator.ManualName, stubStrategy{name: evaluator.ManualName, confidence: 1.0})
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, nil, 42)

	require.True(t, result.Success)
	require.NotNil(t, result.AssessmentID)
	require.Len(t, repo.assessments, 1)

	assessment := repo.assessments[0]
	require.Equal(t, 2.0, assessment.TotalScore)
	require.Equal(t, 50.0, assessment.NormalizedScore)
	require.Equal(t, 1.0, assessment.ConfidenceScore)
	require.Equal(t, uint(42), assessment.AssessedBy)
	require.Equal(t, models.RecordingStatusAssessed, repo.recording.Status)

	aggregate := result.Results[evaluator.ManualName]
	require.Equal(t, 4.0, aggregate.TotalWeight)
	require.Equal(t, 50.0, aggregate.NormalizedScore)
	require.Equal(t, 3, aggregate.ResponseCount)
}

func TestProcessAssessmentRollbackOnAssessmentWriteFailure(t *testing.T) {
	repo := newTestRepo(
		[]float64{1, 1, 1},
		[]string{"a", "b", "c"},
		[]string{"a", "b", "c"},
	)
	repo.failSaveAssessment = true
	registry := evaluator.NewRegistry()
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, nil, 42)

	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
	require.Empty(t, repo.evaluations, "evaluation rows must not survive rollback")
	require.Empty(t, repo.assessments)
	require.Equal(t, models.RecordingStatusPending, repo.recording.Status)
}

func TestProcessAssessmentPrimaryAbsentWritesNoAssessment(t *testing.T) {
	repo := newTestRepo(
		[]float64{1, 1},
		[]string{"a", "b"},
		[]string{"a", "b"},
	)
	registry := evaluator.NewRegistry()
	registry.Register(evaluator.AIName, evaluator.NewAIStrategy())
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, []string{evaluator.AIName}, 42)

	require.True(t, result.Success)
	require.Nil(t, result.AssessmentID, "no assessment without the primary evaluator")
	require.Len(t, repo.evaluations, 2, "evaluation rows still commit")
	require.Empty(t, repo.assessments)
	require.Equal(t, models.RecordingStatusPending, repo.recording.Status)
	require.Contains(t, result.Results, evaluator.AIName)
}

func TestProcessAssessmentRecordingNotFound(t *testing.T) {
	repo := &fakeAssessmentRepo{}
	svc := newTestService(repo, evaluator.NewRegistry())

	result := svc.ProcessAssessment(context.Background(), 99, nil, 42)

	require.False(t, result.Success)
	require.Equal(t, ErrRecordingNotFound.Error(), result.Error)
	require.Empty(t, repo.evaluations)
}

func TestProcessAssessmentNoResponses(t *testing.T) {
	repo := &fakeAssessmentRepo{
		recording: &models.Recording{ID: 1, PassageID: 7, Status: models.RecordingStatusPending},
	}
	svc := newTestService(repo, evaluator.NewRegistry())

	result := svc.ProcessAssessment(context.Background(), 1, nil, 42)

	require.False(t, result.Success)
	require.Equal(t, ErrRecordingHasNoResponses.Error(), result.Error)
}

func TestProcessAssessmentSkipsUnregisteredTypes(t *testing.T) {
	repo := newTestRepo(
		[]float64{1},
		[]string{"a"},
		[]string{"a"},
	)
	registry := evaluator.NewRegistry()
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, []string{evaluator.ManualName, "ghost"}, 42)

	require.True(t, result.Success)
	require.NotNil(t, result.AssessmentID)
	require.Len(t, repo.evaluations, 1)
	require.NotContains(t, result.Results, "ghost")
}

func TestProcessAssessmentNoValidEvaluatorTypes(t *testing.T) {
	repo := newTestRepo(
		[]float64{1},
		[]string{"a"},
		[]string{"a"},
	)
	svc := newTestService(repo, evaluator.NewRegistry())

	result := svc.ProcessAssessment(context.Background(), 1, []string{"ghost"}, 42)

	require.False(t, result.Success)
	require.Equal(t, ErrNoValidEvaluatorTypes.Error(), result.Error)
	require.Nil(t, result.AssessmentID)
	require.Empty(t, repo.evaluations)
	require.Empty(t, repo.assessments)
	require.Equal(t, models.RecordingStatusPending, repo.recording.Status)
}

func TestProcessAssessmentDeduplicatesRequestedTypes(t *testing.T) {
	repo := newTestRepo(
		[]float64{1},
		[]string{"a"},
		[]string{"a"},
	)
	svc := newTestService(repo, evaluator.NewRegistry())

	result := svc.ProcessAssessment(context.Background(), 1, []string{evaluator.ManualName, evaluator.ManualName}, 42)

	require.True(t, result.Success)
	require.NotNil(t, result.AssessmentID)
	require.Len(t, repo.evaluations, 1, "a repeated type must not produce a second row")
	require.Equal(t, 1, result.Results[evaluator.ManualName].ResponseCount)
}

func TestProcessAssessmentStrategyFailureRollsBack(t *testing.T) {
	repo := newTestRepo(
		[]float64{1, 1},
		[]string{"a", "b"},
		[]string{"a", "b"},
	)
	registry := evaluator.NewRegistry()
	registry.Register("broken", stubStrategy{name: "broken", err: errors.New("strategy blew up")})
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, []string{evaluator.ManualName, "broken"}, 42)

	require.False(t, result.Success)
	require.Contains(t, result.Error, "strategy blew up")
	require.Empty(t, repo.evaluations, "prior manual evaluations roll back with the run")
	require.Empty(t, repo.assessments)
}

func TestProcessAssessmentAudioCapability(t *testing.T) {
	repo := newTestRepo(
		[]float64{1},
		[]string{"a"},
		[]string{"a"},
	)
	registry := evaluator.NewRegistry()
	registry.Register(evaluator.ManualName, audioStubStrategy{
		stubStrategy: stubStrategy{name: evaluator.ManualName, confidence: 1.0},
		audioScore:   77,
	})
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, nil, 42)

	require.True(t, result.Success)
	require.Len(t, repo.evaluations, 2)

	var audio *models.Evaluation
	for i := range repo.evaluations {
		if repo.evaluations[i].EvaluationType == models.EvaluationTypeAudio {
			audio = &repo.evaluations[i]
		}
	}
	require.NotNil(t, audio)
	require.Nil(t, audio.ResponseID)
	require.Equal(t, 77.0, audio.Score)

	// The audio row never feeds the response aggregates.
	require.Equal(t, 1, result.Results[evaluator.ManualName].ResponseCount)
}

func TestProcessAssessmentAudioFailureDoesNotAbort(t *testing.T) {
	repo := newTestRepo(
		[]float64{1},
		[]string{"a"},
		[]string{"a"},
	)
	registry := evaluator.NewRegistry()
	registry.Register(evaluator.ManualName, audioStubStrategy{
		stubStrategy: stubStrategy{name: evaluator.ManualName, confidence: 1.0},
		audioErr:     errors.New("decoder unavailable"),
	})
	svc := newTestService(repo, registry)

	result := svc.ProcessAssessment(context.Background(), 1, nil, 42)

	require.True(t, result.Success)
	require.NotNil(t, result.AssessmentID)
	require.Len(t, repo.evaluations, 1, "only the response evaluation persists")
}

func TestProcessAssessmentEndToEndManualEvaluator(t *testing.T) {
	repo := newTestRepo(
		[]float64{1, 1},
		[]string{"blue sky", "green grss"},
		[]string{"blue sky", "green grass"},
	)
	svc := newTestService(repo, evaluator.NewRegistry())

	result := svc.ProcessAssessment(context.Background(), 1, nil, 42)

	require.True(t, result.Success)
	require.Len(t, repo.evaluations, 2)
	require.Equal(t, 100.0, repo.evaluations[0].Score)
	// "green grss" is one edit from the 11-rune reference.
	require.InDelta(t, 100*(10.0/11.0), repo.evaluations[1].Score, 1e-9)

	require.Len(t, repo.assessments, 1)
	assessment := repo.assessments[0]
	require.InDelta(t, 1.0+10.0/11.0, assessment.TotalScore, 1e-9)
	require.InDelta(t, (1.0+10.0/11.0)/2.0*100.0, assessment.NormalizedScore, 1e-9)
	require.Equal(t, 1.0, assessment.ConfidenceScore)
}

func TestGetAssessmentDetailsPartition(t *testing.T) {
	responseID := uint(100)
	repo := &fakeAssessmentRepo{
		assessments: []models.Assessment{{ID: 5, RecordingID: 1, NormalizedScore: 80}},
		evaluations: []models.Evaluation{
			{ID: 1, RecordingID: 1, ResponseID: &responseID, EvaluatorType: evaluator.ManualName, EvaluationType: models.EvaluationTypeResponse, Score: 80},
			{ID: 2, RecordingID: 1, ResponseID: &responseID, EvaluatorType: evaluator.AIName, EvaluationType: models.EvaluationTypeResponse, Score: 0},
			{ID: 3, RecordingID: 1, ResponseID: nil, EvaluatorType: evaluator.ManualName, EvaluationType: models.EvaluationTypeAudio, Score: 60},
		},
	}
	svc := newTestService(repo, evaluator.NewRegistry())

	details, err := svc.GetAssessmentDetails(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, details)
	require.Equal(t, uint(5), details.Assessment.ID)
	require.Len(t, details.Evaluations.Responses[responseID], 2)
	require.Equal(t, 60.0, details.Evaluations.Audio[evaluator.ManualName].Score)
}

func TestGetAssessmentDetailsUnknownID(t *testing.T) {
	svc := newTestService(&fakeAssessmentRepo{}, evaluator.NewRegistry())

	details, err := svc.GetAssessmentDetails(context.Background(), 404)
	require.NoError(t, err)
	require.Nil(t, details)
}

func TestRegisterAndSetPrimaryEvaluator(t *testing.T) {
	registry := evaluator.NewRegistry()
	svc := newTestService(&fakeAssessmentRepo{}, registry)

	svc.RegisterEvaluator("custom", stubStrategy{name: "custom", confidence: 0.9})
	require.True(t, svc.SetPrimaryEvaluator("custom"))
	require.False(t, svc.SetPrimaryEvaluator("missing"))
	require.Equal(t, "custom", registry.Primary())
}
