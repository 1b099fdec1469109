package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) GetAdminStats(c *fiber.Ctx) error {
	overview, err := handler.stats.Overview(c.UserContext(), handler.clock.Now())
	if err != nil {
		handler.logger.Error("load admin stats failed", zap.Error(err))
		return apiError(c, fiber.StatusServiceUnavailable, "statistics are temporarily unavailable")
	}
	return c.JSON(overview)
}
