package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lectapp/lector-api/internal/config"
	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/evaluator"
	"github.com/lectapp/lector-api/internal/handler"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/repository"
	"github.com/lectapp/lector-api/internal/router"
	"github.com/lectapp/lector-api/internal/service"
)

func setupAssessmentApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Passage{},
		&models.Question{},
		&models.Recording{},
		&models.Response{},
		&models.Evaluation{},
		&models.Assessment{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	passageRepo := repository.NewPassageRepository(db)
	recordingRepo := repository.NewRecordingRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	registry := evaluator.NewRegistry()
	registry.Register(evaluator.LevenshteinName, evaluator.NewLevenshteinStrategy(evaluator.DefaultConfidenceFloor))

	recordingService := service.NewRecordingService(recordingRepo, passageRepo, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, registry, nil, service.AssessmentConfig{}, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		RecordingHandler:  handler.NewRecordingHandler(recordingService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, validate, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(9))
			return c.Next()
		},
	})

	return app, db
}

func seedAssessmentData(t *testing.T, db *gorm.DB) (models.Recording, models.Question) {
	t.Helper()

	passage := models.Passage{Title: "The Sky", Body: "The sky is blue.", Difficulty: 3, CreatedBy: 1}
	require.NoError(t, db.Create(&passage).Error)
	question := models.Question{PassageID: passage.ID, Text: "What color is the sky?", ReferenceAnswer: "blue sky", Weight: 1, Active: true}
	require.NoError(t, db.Create(&question).Error)
	recording := models.Recording{UserID: 9, PassageID: passage.ID, Status: models.RecordingStatusPending}
	require.NoError(t, db.Create(&recording).Error)

	return recording, question
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAssessmentHandlerProcessFlow(t *testing.T) {
	app, db := setupAssessmentApp(t)
	recording, question := seedAssessmentData(t, db)

	recordingID := strconv.FormatUint(uint64(recording.ID), 10)

	submitResp := postJSON(t, app, "/api/v2/recordings/"+recordingID+"/responses", dto.ResponseSubmitRequest{
		QuestionID: question.ID,
		AnswerText: "Blue Sky",
	})
	require.Equal(t, fiber.StatusCreated, submitResp.StatusCode)

	processResp := postJSON(t, app, "/api/v2/assessments/recordings/"+recordingID, dto.ProcessAssessmentRequest{})
	require.Equal(t, fiber.StatusOK, processResp.StatusCode)

	var processBody struct {
		Success bool                        `json:"success"`
		Data    dto.ProcessAssessmentResult `json:"data"`
		Message string                      `json:"message"`
	}
	decodeResponse(t, processResp, &processBody)
	require.True(t, processBody.Success)
	require.Equal(t, "assessment processed", processBody.Message)
	require.NotNil(t, processBody.Data.AssessmentID)
	require.Equal(t, 100.0, processBody.Data.Results[evaluator.ManualName].NormalizedScore)

	var reloaded models.Recording
	require.NoError(t, db.First(&reloaded, recording.ID).Error)
	require.Equal(t, models.RecordingStatusAssessed, reloaded.Status)

	detailsReq := httptest.NewRequest("GET", "/api/v2/assessments/"+strconv.FormatUint(uint64(*processBody.Data.AssessmentID), 10), nil)
	detailsResp, err := app.Test(detailsReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, detailsResp.StatusCode)

	var detailsBody struct {
		Success bool                          `json:"success"`
		Data    dto.AssessmentDetailsResponse `json:"data"`
	}
	decodeResponse(t, detailsResp, &detailsBody)
	require.True(t, detailsBody.Success)
	require.Equal(t, recording.ID, detailsBody.Data.Assessment.RecordingID)
	require.Equal(t, uint(9), detailsBody.Data.Assessment.AssessedBy)
	require.Len(t, detailsBody.Data.Evaluations.Responses, 1)
}

func TestAssessmentHandlerProcessWithExplicitTypes(t *testing.T) {
	app, db := setupAssessmentApp(t)
	recording, question := seedAssessmentData(t, db)

	recordingID := strconv.FormatUint(uint64(recording.ID), 10)

	submitResp := postJSON(t, app, "/api/v2/recordings/"+recordingID+"/responses", dto.ResponseSubmitRequest{
		QuestionID: question.ID,
		AnswerText: "blue sky",
	})
	require.Equal(t, fiber.StatusCreated, submitResp.StatusCode)

	processResp := postJSON(t, app, "/api/v2/assessments/recordings/"+recordingID, dto.ProcessAssessmentRequest{
		EvaluatorTypes: []string{evaluator.ManualName, evaluator.LevenshteinName},
	})
	require.Equal(t, fiber.StatusOK, processResp.StatusCode)

	evalsReq := httptest.NewRequest("GET", "/api/v2/assessments/recordings/"+recordingID+"/evaluations", nil)
	evalsResp, err := app.Test(evalsReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, evalsResp.StatusCode)

	var evalsBody struct {
		Success bool                     `json:"success"`
		Data    []dto.EvaluationResponse `json:"data"`
	}
	decodeResponse(t, evalsResp, &evalsBody)
	require.True(t, evalsBody.Success)
	require.Len(t, evalsBody.Data, 2)
}

func TestAssessmentHandlerProcessUnknownRecording(t *testing.T) {
	app, _ := setupAssessmentApp(t)

	resp := postJSON(t, app, "/api/v2/assessments/recordings/999", dto.ProcessAssessmentRequest{})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Success bool                        `json:"success"`
		Data    dto.ProcessAssessmentResult `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.False(t, body.Data.Success)
	require.NotEmpty(t, body.Data.Error)
}

func TestAssessmentHandlerProcessRejectsInvalidBody(t *testing.T) {
	app, db := setupAssessmentApp(t)
	recording, question := seedAssessmentData(t, db)

	recordingID := strconv.FormatUint(uint64(recording.ID), 10)
	submitResp := postJSON(t, app, "/api/v2/recordings/"+recordingID+"/responses", dto.ResponseSubmitRequest{
		QuestionID: question.ID,
		AnswerText: "blue sky",
	})
	require.Equal(t, fiber.StatusCreated, submitResp.StatusCode)

	resp := postJSON(t, app, "/api/v2/assessments/recordings/"+recordingID, dto.ProcessAssessmentRequest{
		EvaluatorTypes: []string{""},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Evaluation{}).Count(&count).Error)
	require.Zero(t, count, "a rejected request must not reach the orchestrator")
}

func TestAssessmentHandlerProcessAllTypesUnknown(t *testing.T) {
	app, db := setupAssessmentApp(t)
	recording, question := seedAssessmentData(t, db)

	recordingID := strconv.FormatUint(uint64(recording.ID), 10)
	submitResp := postJSON(t, app, "/api/v2/recordings/"+recordingID+"/responses", dto.ResponseSubmitRequest{
		QuestionID: question.ID,
		AnswerText: "blue sky",
	})
	require.Equal(t, fiber.StatusCreated, submitResp.StatusCode)

	resp := postJSON(t, app, "/api/v2/assessments/recordings/"+recordingID, dto.ProcessAssessmentRequest{
		EvaluatorTypes: []string{"ghost"},
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Success bool                        `json:"success"`
		Data    dto.ProcessAssessmentResult `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.False(t, body.Data.Success)
	require.NotEmpty(t, body.Data.Error)

	var count int64
	require.NoError(t, db.Model(&models.Evaluation{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssessmentHandlerProcessNoResponses(t *testing.T) {
	app, db := setupAssessmentApp(t)
	recording, _ := seedAssessmentData(t, db)

	recordingID := strconv.FormatUint(uint64(recording.ID), 10)
	resp := postJSON(t, app, "/api/v2/assessments/recordings/"+recordingID, dto.ProcessAssessmentRequest{})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAssessmentHandlerDuplicateResponseConflict(t *testing.T) {
	app, db := setupAssessmentApp(t)
	recording, question := seedAssessmentData(t, db)

	recordingID := strconv.FormatUint(uint64(recording.ID), 10)
	payload := dto.ResponseSubmitRequest{QuestionID: question.ID, AnswerText: "blue sky"}

	first := postJSON(t, app, "/api/v2/recordings/"+recordingID+"/responses", payload)
	require.Equal(t, fiber.StatusCreated, first.StatusCode)

	second := postJSON(t, app, "/api/v2/recordings/"+recordingID+"/responses", payload)
	require.Equal(t, fiber.StatusConflict, second.StatusCode)
}

func TestAssessmentHandlerDetailsNotFound(t *testing.T) {
	app, _ := setupAssessmentApp(t)

	req := httptest.NewRequest("GET", "/api/v2/assessments/404", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
