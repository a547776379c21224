package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/service"
	"github.com/lectapp/lector-api/internal/utils"
)

// RecordingHandler manages recording and response endpoints.
type RecordingHandler struct {
	service service.RecordingService
	logger  zerolog.Logger
}

// NewRecordingHandler builds a recording handler instance.
func NewRecordingHandler(service service.RecordingService, logger zerolog.Logger) *RecordingHandler {
	return &RecordingHandler{
		service: service,
		logger:  logger.With().Str("component", "recording_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RecordingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/responses", h.submitResponse)
}

func (h *RecordingHandler) list(c *fiber.Ctx) error {
	recordings, err := h.service.ListByUser(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "recordings retrieved", recordings)
}

func (h *RecordingHandler) create(c *fiber.Ctx) error {
	var payload dto.RecordingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	recording, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "recording created", recording)
}

func (h *RecordingHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	recording, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "recording retrieved", recording)
}

func (h *RecordingHandler) submitResponse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ResponseSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.SubmitResponse(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "response submitted", response)
}

func (h *RecordingHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrRecordingNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "recording not found")
	case errors.Is(err, service.ErrPassageNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "passage not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrQuestionNotInPassage),
		errors.Is(err, service.ErrQuestionInactive):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrResponseAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
