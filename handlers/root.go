package handlers

import (
	"github.com/gofiber/fiber/v2"
	t "github.com/quesurifn/whatsup-calendar-server/types"
	"go.uber.org/zap"
)

func (h Handlers) RootHandler(c *fiber.Ctx) error {
	h.Logger.Debug("RootHandler", zap.String("ip", c.IP()))
	return c.JSON(t.BaseResponse[t.Info]{
		Data:    h.Info,
		Message: "ok",
	})
}
