package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	c "github.com/quesurifn/whatsup-calendar-server/calendar"
	"go.uber.org/zap"
)

const defaultFilename = "whatsup.ics"

func (h Handlers) CalendarHandler(ctx *fiber.Ctx) error {
	feed, err := h.Calendar.Load(ctx.UserContext())
	if err != nil {
		h.Logger.Error("CalendarHandler", zap.Error(err))
		if errors.Is(err, c.ErrSourceUnavailable) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "calendar source unavailable")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "calendar could not be built")
	}

	h.Logger.Debug("CalendarHandler",
		zap.Int("events", feed.Events),
		zap.Int("skipped", feed.Skipped),
	)

	filename := h.Filename
	if filename == "" {
		filename = defaultFilename
	}

	ctx.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return ctx.SendString(feed.Body)
}
