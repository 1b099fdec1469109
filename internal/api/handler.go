package api

import (
	"errors"
	"strings"

	"github.com/terraincognita07/innercalm/internal/services"
	"go.uber.org/zap"
)

type Handler struct {
	submissions *services.SubmissionService
	history     *services.HistoryService
	stats       *services.AdminStatsService
	clock       services.Clock
	secretKey   []byte
	logger      *zap.Logger
	authLimiter *tokenFailureLimiter
}

type Dependencies struct {
	Submissions *services.SubmissionService
	History     *services.HistoryService
	Stats       *services.AdminStatsService
	Clock       services.Clock
	SecretKey   string
	Logger      *zap.Logger
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Submissions == nil || deps.History == nil || deps.Stats == nil {
		return nil, errors.New("submission, history and stats services are required")
	}
	if strings.TrimSpace(deps.SecretKey) == "" {
		return nil, errors.New("secret key is required")
	}
	if deps.Clock == nil {
		deps.Clock = services.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Handler{
		submissions: deps.Submissions,
		history:     deps.History,
		stats:       deps.Stats,
		clock:       deps.Clock,
		secretKey:   []byte(deps.SecretKey),
		logger:      deps.Logger,
		authLimiter: newTokenFailureLimiter(authFailureLimit, authFailureWindow),
	}, nil
}
