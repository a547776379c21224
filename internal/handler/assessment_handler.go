package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/service"
	"github.com/lectapp/lector-api/internal/utils"
)

// AssessmentHandler exposes assessment processing and retrieval endpoints.
type AssessmentHandler struct {
	service   service.AssessmentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssessmentHandler builds an assessment handler instance.
func NewAssessmentHandler(service service.AssessmentService, validate *validator.Validate, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("/recordings/:id", h.process)
	router.Get("/recordings/:id/evaluations", h.listEvaluations)
	router.Get("/:id", h.details)
}

func (h *AssessmentHandler) process(c *fiber.Ctx) error {
	recordingID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ProcessAssessmentRequest{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result := h.service.ProcessAssessment(c.Context(), recordingID, payload.EvaluatorTypes, userIDFromContext(c))
	if !result.Success {
		// A failed run is a reported outcome, not an internal error.
		status := fiber.StatusUnprocessableEntity
		if result.Error == service.ErrRecordingNotFound.Error() {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(utils.APIResponse{
			Success: false,
			Data:    result,
			Message: result.Error,
		})
	}

	return utils.SendSuccess(c, "assessment processed", result)
}

func (h *AssessmentHandler) details(c *fiber.Ctx) error {
	assessmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	details, err := h.service.GetAssessmentDetails(c.Context(), assessmentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
	if details == nil {
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	}

	return utils.SendSuccess(c, "assessment retrieved", details)
}

func (h *AssessmentHandler) listEvaluations(c *fiber.Ctx) error {
	recordingID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluations, err := h.service.ListEvaluations(c.Context(), recordingID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}
