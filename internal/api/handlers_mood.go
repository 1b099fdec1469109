package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/innercalm/internal/models"
	"github.com/terraincognita07/innercalm/internal/services"
	"go.uber.org/zap"
)

type reconcileHistoryInput struct {
	Local []models.MoodRecord `json:"local"`
	Limit int                 `json:"limit"`
}

func (handler *Handler) CanSubmit(c *fiber.Ctx) error {
	principal, ok := currentPrincipal(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	eligibility, err := handler.submissions.CheckEligibility(c.UserContext(), principal.ID)
	if err != nil {
		handler.logger.Error("check submission eligibility failed", zap.Uint("owner_id", principal.ID), zap.Error(err))
		return submissionAPIError(c, err)
	}

	return c.JSON(fiber.Map{
		"can_submit":          eligibility.Allowed,
		"last_submission":     optionalTimestamp(eligibility.LastSubmission),
		"next_available_time": optionalTimestamp(eligibility.NextAvailableAt),
		"cooldown_seconds":    int64(eligibility.CooldownWindow.Seconds()),
	})
}

func (handler *Handler) SubmitMood(c *fiber.Ctx) error {
	principal, ok := currentPrincipal(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := services.MoodSurveyInput{}
	if err := c.BodyParser(&input); err != nil {
		return payloadAPIError(c, err)
	}

	result, err := handler.submissions.Submit(c.UserContext(), principal.ID, input)
	if err != nil {
		return submissionAPIError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":             "mood tracking saved successfully",
		"record":              result.Record,
		"mood_label":          models.MoodLabel(result.Record.Mood),
		"analysis":            result.Analysis,
		"analysis_available":  result.Analysis != nil,
		"suggestions":         result.Suggestions,
		"submission_time":     formatTimestamp(result.Record.CreatedAt),
		"next_available_time": formatTimestamp(result.NextAvailableAt),
	})
}

func (handler *Handler) GetHistory(c *fiber.Ctx) error {
	principal, ok := currentPrincipal(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseLimitQuery(c.Query("limit"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	records, err := handler.history.Recent(c.UserContext(), principal.ID, limit)
	if err != nil {
		handler.logger.Error("load mood history failed", zap.Uint("owner_id", principal.ID), zap.Error(err))
		return submissionAPIError(c, err)
	}
	return c.JSON(fiber.Map{"mood_logs": records})
}

// ReconcileHistory merges the client's cached history with the stored one.
// It answers 200 even when the store is down; remote_available tells the
// client whether the result includes server data.
func (handler *Handler) ReconcileHistory(c *fiber.Ctx) error {
	principal, ok := currentPrincipal(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := reconcileHistoryInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if input.Limit < 0 {
		return apiError(c, fiber.StatusBadRequest, "limit must be a positive integer")
	}

	history := handler.history.Reconciled(c.UserContext(), principal.ID, input.Local, input.Limit)
	return c.JSON(fiber.Map{
		"mood_logs":        history.Records,
		"remote_available": history.RemoteAvailable,
	})
}
