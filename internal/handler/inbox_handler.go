package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-notify/internal/dto"
	"github.com/noah-isme/gema-notify/internal/service"
	"github.com/noah-isme/gema-notify/internal/utils"
)

// InboxHandler manages SSE inbox streams and read-state operations.
type InboxHandler struct {
	service service.InboxService
	logger  zerolog.Logger
	timeout time.Duration
}

// NewInboxHandler constructs a handler instance.
func NewInboxHandler(service service.InboxService, logger zerolog.Logger, timeout time.Duration) *InboxHandler {
	return &InboxHandler{
		service: service,
		logger:  logger.With().Str("component", "inbox_handler").Logger(),
		timeout: timeout,
	}
}

// Register binds the inbox routes.
func (h *InboxHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/unread-count", h.unreadCount)
	router.Get("/stream", h.stream)
	router.Patch("/:id/read", h.markRead)
}

func (h *InboxHandler) list(c *fiber.Ctx) error {
	recipientID := recipientIDFromContext(c)
	if recipientID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(requestContext(c), recipientID, limit, offset)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notifications", notifications)
}

func (h *InboxHandler) unreadCount(c *fiber.Ctx) error {
	recipientID := recipientIDFromContext(c)
	if recipientID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	count, err := h.service.Unread(requestContext(c), recipientID)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "unread count", fiber.Map{"unread": count})
}

func (h *InboxHandler) stream(c *fiber.Ctx) error {
	recipientID := recipientIDFromContext(c)
	if recipientID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(requestContext(c))

	stream, cleanup := h.service.Subscribe(recipientID)

	keepAliveInterval := h.timeout
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case notification, ok := <-stream:
				if !ok {
					return
				}
				if err := writeInboxEvent(w, notification); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write inbox event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write inbox keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func (h *InboxHandler) markRead(c *fiber.Ctx) error {
	recipientID := recipientIDFromContext(c)
	if recipientID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.service.MarkRead(requestContext(c), id, recipientID)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "notification updated", notification)
}

func writeInboxEvent(w *bufio.Writer, notification dto.InboxNotificationResponse) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: notification\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
