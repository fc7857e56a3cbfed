package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/service"
	"github.com/noah-isme/gema-notify/internal/utils"
)

// ReminderHandler exposes the ops API: reminder state, delivery records
// and a manual sweep trigger.
type ReminderHandler struct {
	ops    service.OpsService
	sweep  service.SweepDispatcher
	now    func() time.Time
	logger zerolog.Logger
}

func NewReminderHandler(ops service.OpsService, sweep service.SweepDispatcher, now func() time.Time, logger zerolog.Logger) *ReminderHandler {
	if now == nil {
		now = time.Now
	}
	return &ReminderHandler{
		ops:    ops,
		sweep:  sweep,
		now:    now,
		logger: logger.With().Str("component", "reminder_handler").Logger(),
	}
}

// Register binds the ops routes.
func (h *ReminderHandler) Register(router fiber.Router) {
	router.Get("/assignments/:assignmentId/reminders", h.remindersByAssignment)
	router.Get("/assignments/:assignmentId/records", h.recordsByAssignment)
	router.Get("/reminders/due", h.dueReminders)
	router.Get("/recipients/:recipientId/records", h.recordsByRecipient)
	router.Post("/sweep", h.runSweep)
}

func (h *ReminderHandler) remindersByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseParamUint(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	reminders, err := h.ops.RemindersByAssignment(requestContext(c), assignmentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("assignment_id", assignmentID).Msg("failed to list reminders")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list reminders")
	}

	return utils.SendSuccess(c, "reminders retrieved", reminders)
}

func (h *ReminderHandler) recordsByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseParamUint(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
	}

	records, err := h.ops.RecordsByAssignment(requestContext(c), assignmentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("assignment_id", assignmentID).Msg("failed to list records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list delivery records")
	}

	return utils.SendSuccess(c, "delivery records retrieved", records)
}

func (h *ReminderHandler) dueReminders(c *fiber.Ctx) error {
	at := h.now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "at must be RFC3339")
		}
		at = parsed
	}

	reminders, err := h.ops.DueReminders(requestContext(c), at)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Time("at", at).Msg("failed to list due reminders")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list due reminders")
	}

	return utils.SendSuccess(c, "due reminders retrieved", reminders)
}

func (h *ReminderHandler) recordsByRecipient(c *fiber.Ctx) error {
	recipientID := c.Params("recipientId")
	if recipientID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "missing recipient id")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	records, err := h.ops.RecordsByRecipient(requestContext(c), recipientID, limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("recipient_id", recipientID).Msg("failed to list records")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list delivery records")
	}

	return utils.SendSuccess(c, "delivery records retrieved", records)
}

func (h *ReminderHandler) runSweep(c *fiber.Ctx) error {
	var payload dto.SweepRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	at := h.now()
	if payload.At != "" {
		parsed, err := time.Parse(time.RFC3339, payload.At)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "at must be RFC3339")
		}
		at = parsed
	}

	report, err := h.sweep.RunSweep(requestContext(c), at)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("manual sweep failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "sweep failed")
	}

	return utils.SendSuccess(c, "sweep completed", dto.SweepReportResponse{
		RanAt:     report.RanAt,
		Due:       report.Due,
		Claimed:   report.Claimed,
		LostRaces: report.LostRaces,
		Sent:      report.Sent,
		Failed:    report.Failed,
	})
}
