package api

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/innercalm/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// submissionAPIError maps service errors onto statuses. Anything that is not
// a validation or cooldown outcome is reported as a retryable 503.
func submissionAPIError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var cooldownErr *services.CooldownError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	case errors.As(err, &cooldownErr):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":               "you can only submit once every cooldown window",
			"next_available_time": formatTimestamp(cooldownErr.NextAvailableAt),
		})
	default:
		return apiError(c, fiber.StatusServiceUnavailable, "mood records are temporarily unavailable")
	}
}

// payloadAPIError reports a JSON type mismatch as a field error so clients
// see which answer was malformed.
func payloadAPIError(c *fiber.Ctx, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return submissionAPIError(c, &services.ValidationError{Fields: []services.FieldError{{
			Field: typeErr.Field,
			Rule:  "type",
			Param: typeErr.Type.String(),
		}}})
	}
	return apiError(c, fiber.StatusBadRequest, "invalid payload")
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}

func optionalTimestamp(value *time.Time) interface{} {
	if value == nil {
		return nil
	}
	return formatTimestamp(*value)
}

func parseLimitQuery(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.DefaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return services.NormalizeHistoryLimit(limit), nil
}
