package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	mood := api.Group("/mood-tracking", handler.AuthRequired)
	mood.Get("/can-submit", handler.CanSubmit)
	mood.Post("", handler.SubmitMood)
	mood.Get("/history", handler.GetHistory)
	mood.Post("/history/reconcile", handler.ReconcileHistory)

	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Get("/stats", handler.GetAdminStats)
}
