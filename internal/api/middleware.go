package api

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/innercalm/internal/models"
	"go.uber.org/zap"
)

const (
	contextPrincipalKey = "current_principal"

	authFailureLimit  = 20
	authFailureWindow = 15 * time.Minute
)

type authClaims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func currentPrincipal(c *fiber.Ctx) (*models.Principal, bool) {
	principal, ok := c.Locals(contextPrincipalKey).(*models.Principal)
	return principal, ok
}

// AuthRequired resolves the bearer token into a principal. Clients that keep
// presenting bad tokens are throttled per IP.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	client := tokenFailureClientKey(c)
	now := handler.clock.Now()
	if wait := handler.authLimiter.blockedFor(client, now); wait > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many failed authentication attempts")
	}

	principal, err := handler.authenticateRequest(c, now)
	if err != nil {
		handler.authLimiter.recordFailure(client, now)
		handler.logger.Debug("request authentication failed",
			zap.String("path", c.Path()),
			zap.String("ip", client),
			zap.Error(err),
		)
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.authLimiter.forgive(client)
	c.Locals(contextPrincipalKey, principal)
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	principal, ok := currentPrincipal(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !principal.IsAdmin() {
		return apiError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx, now time.Time) (*models.Principal, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, tokenValue, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenValue) == "" {
		return nil, errors.New("missing bearer token")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenValue), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.UserID == 0 {
		return nil, errors.New("token has no user")
	}

	role := claims.Role
	if role == "" {
		role = models.RoleOwner
	}
	return &models.Principal{ID: claims.UserID, Role: role}, nil
}
