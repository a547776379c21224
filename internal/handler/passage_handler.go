package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lectapp/lector-api/internal/dto"
	"github.com/lectapp/lector-api/internal/repository"
	"github.com/lectapp/lector-api/internal/service"
	"github.com/lectapp/lector-api/internal/utils"
)

// PassageHandler manages passage and question endpoints.
type PassageHandler struct {
	service service.PassageService
	logger  zerolog.Logger
}

// NewPassageHandler builds a passage handler instance.
func NewPassageHandler(service service.PassageService, logger zerolog.Logger) *PassageHandler {
	return &PassageHandler{
		service: service,
		logger:  logger.With().Str("component", "passage_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PassageHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
	router.Post("/:id/questions", h.addQuestion)
	router.Patch("/questions/:questionId", h.updateQuestion)
	router.Delete("/questions/:questionId", h.removeQuestion)
}

func (h *PassageHandler) list(c *fiber.Ctx) error {
	filter := repository.PassageFilter{}
	if createdBy, err := parseQueryUint(c, "created_by"); err == nil && createdBy != nil {
		filter.CreatedBy = createdBy
	}
	if difficulty, err := parseQueryInt(c, "difficulty"); err == nil && difficulty != nil {
		filter.Difficulty = difficulty
	}

	passages, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "passages retrieved", passages)
}

func (h *PassageHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	passage, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "passage retrieved", passage)
}

func (h *PassageHandler) create(c *fiber.Ctx) error {
	var payload dto.PassageCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	passage, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "passage created", passage)
}

func (h *PassageHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PassageUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	passage, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "passage updated", passage)
}

func (h *PassageHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "passage deleted", nil)
}

func (h *PassageHandler) addQuestion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.AddQuestion(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "question created", question)
}

func (h *PassageHandler) updateQuestion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.service.UpdateQuestion(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question updated", question)
}

func (h *PassageHandler) removeQuestion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "questionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.RemoveQuestion(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "question removed", nil)
}

func (h *PassageHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrPassageNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "passage not found")
	case errors.Is(err, service.ErrQuestionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "question not found")
	case errors.Is(err, service.ErrPassageBodyEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
