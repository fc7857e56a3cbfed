package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/service"
	"github.com/noah-isme/gema-notify/internal/utils"
)

// EventHandler receives lifecycle events from the course system.
type EventHandler struct {
	lifecycle service.LifecycleService
	logger    zerolog.Logger
}

// NewEventHandler constructs a handler instance.
func NewEventHandler(lifecycle service.LifecycleService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		lifecycle: lifecycle,
		logger:    logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register binds the event routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Post("/assignment-upserted", h.assignmentUpserted)
	router.Post("/assignment-removed", h.assignmentRemoved)
	router.Post("/submission-received", h.submissionReceived)
	router.Post("/submission-graded", h.submissionGraded)
	router.Post("/extension-granted", h.extensionGranted)
	router.Post("/extension-requested", h.extensionRequested)
}

func (h *EventHandler) assignmentUpserted(c *fiber.Ctx) error {
	var payload dto.AssignmentEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.lifecycle.AssignmentUpserted(requestContext(c), payload); err != nil {
		return h.fail(c, err, "assignment upsert event failed")
	}

	return utils.SendSuccess(c, "assignment event accepted", nil)
}

func (h *EventHandler) assignmentRemoved(c *fiber.Ctx) error {
	var payload dto.AssignmentRemovedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.lifecycle.AssignmentRemoved(requestContext(c), payload); err != nil {
		return h.fail(c, err, "assignment removal event failed")
	}

	return utils.SendSuccess(c, "assignment removed", nil)
}

func (h *EventHandler) submissionReceived(c *fiber.Ctx) error {
	var payload dto.SubmissionEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.lifecycle.SubmissionReceived(requestContext(c), payload); err != nil {
		return h.fail(c, err, "submission event failed")
	}

	return utils.SendSuccess(c, "submission event accepted", nil)
}

func (h *EventHandler) submissionGraded(c *fiber.Ctx) error {
	var payload dto.SubmissionEventRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.lifecycle.SubmissionGraded(requestContext(c), payload); err != nil {
		return h.fail(c, err, "grading event failed")
	}

	return utils.SendSuccess(c, "grading event accepted", nil)
}

func (h *EventHandler) extensionGranted(c *fiber.Ctx) error {
	var payload dto.ExtensionGrantedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.lifecycle.ExtensionGranted(requestContext(c), payload); err != nil {
		return h.fail(c, err, "extension grant event failed")
	}

	return utils.SendSuccess(c, "extension granted", nil)
}

func (h *EventHandler) extensionRequested(c *fiber.Ctx) error {
	var payload dto.ExtensionRequestedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.lifecycle.ExtensionRequested(requestContext(c), payload); err != nil {
		return h.fail(c, err, "extension request event failed")
	}

	return utils.SendSuccess(c, "extension request forwarded", nil)
}

func (h *EventHandler) fail(c *fiber.Ctx, err error, logMessage string) error {
	if isValidationError(err) {
		return utils.SendValidationError(c, err)
	}
	if errors.Is(err, service.ErrAssignmentNotFound) {
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	}
	if errors.Is(err, service.ErrInvalidDueDate) {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid due date")
	}

	requestLogger(h.logger, c).Error().Err(err).Msg(logMessage)
	return utils.SendError(c, fiber.StatusInternalServerError, "internal error")
}
