// Package classifier talks to the external mood scoring service.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/terraincognita07/innercalm/internal/models"
	"github.com/terraincognita07/innercalm/internal/services"
	"go.uber.org/zap"
)

const predictPath = "/predict"

type surveyFeatures struct {
	SleepHours        float64 `json:"sleep_hours"`
	Trained           bool    `json:"trained"`
	Mood              int     `json:"mood"`
	StressLevel       int     `json:"stress_level"`
	WaterLiters       float64 `json:"water_liters"`
	CaffeineCups      int     `json:"caffeine_cups"`
	SocialInteraction bool    `json:"social_interaction"`
	ScreenHours       float64 `json:"screen_hours"`
	AteHealthy        bool    `json:"ate_healthy"`
	SpentTimeOutside  bool    `json:"spent_time_outside"`
	Meditated         bool    `json:"meditated"`
	WorkStudyHours    float64 `json:"work_study_hours"`
	EnoughSleepWeek   bool    `json:"enough_sleep_week"`
	PhysicalTiredness int     `json:"physical_tiredness"`
	MentalTiredness   int     `json:"mental_tiredness"`
	MotivationLevel   int     `json:"motivation_level"`
	SuicidalThoughts  bool    `json:"suicidal_thoughts"`
}

type predictRequest struct {
	surveyFeatures
	PreviousData *surveyFeatures `json:"previous_data,omitempty"`
}

type predictResponse struct {
	Prediction   string   `json:"prediction"`
	Confidence   float64  `json:"confidence"`
	MoodState    string   `json:"mood_state"`
	MoodLevel    int      `json:"mood_level"`
	Improvements []string `json:"improvements"`
	Status       string   `json:"status"`
	Error        string   `json:"error"`
}

// Client implements services.Classifier over HTTP. A client built with an
// empty base URL reports every call as unavailable.
type Client struct {
	httpClient *resty.Client
	enabled    bool
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		enabled:    baseURL != "",
		logger:     logger,
	}
}

func (c *Client) Enabled() bool {
	return c.enabled
}

func (c *Client) Classify(ctx context.Context, record models.MoodRecord, previous *models.MoodRecord) (services.Classification, error) {
	if !c.enabled {
		return services.Classification{}, services.ErrClassificationUnavailable
	}

	request := predictRequest{surveyFeatures: featuresOf(record)}
	if previous != nil {
		previousFeatures := featuresOf(*previous)
		request.PreviousData = &previousFeatures
	}

	var response predictResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&response).
		Post(predictPath)
	if err != nil {
		c.logger.Debug("classifier call failed", zap.Error(err))
		return services.Classification{}, fmt.Errorf("%w: %v", services.ErrClassificationUnavailable, err)
	}
	if resp.IsError() {
		c.logger.Debug("classifier returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", response.Error),
		)
		return services.Classification{}, fmt.Errorf("%w: status %d", services.ErrClassificationUnavailable, resp.StatusCode())
	}
	if response.Status != "success" {
		return services.Classification{}, fmt.Errorf("%w: response status %q", services.ErrClassificationUnavailable, response.Status)
	}

	return services.Classification{
		Prediction:   response.Prediction,
		Confidence:   response.Confidence,
		MoodState:    response.MoodState,
		MoodLevel:    response.MoodLevel,
		Improvements: response.Improvements,
	}, nil
}

func featuresOf(record models.MoodRecord) surveyFeatures {
	return surveyFeatures{
		SleepHours:        record.SleepHours,
		Trained:           record.Trained,
		Mood:              record.Mood,
		StressLevel:       record.StressLevel,
		WaterLiters:       record.WaterLiters,
		CaffeineCups:      record.CaffeineCups,
		SocialInteraction: record.SocialInteraction,
		ScreenHours:       record.ScreenHours,
		AteHealthy:        record.AteHealthy,
		SpentTimeOutside:  record.SpentTimeOutside,
		Meditated:         record.Meditated,
		WorkStudyHours:    record.WorkStudyHours,
		EnoughSleepWeek:   record.EnoughSleepWeek,
		PhysicalTiredness: record.PhysicalTiredness,
		MentalTiredness:   record.MentalTiredness,
		MotivationLevel:   record.MotivationLevel,
		SuicidalThoughts:  record.SuicidalThoughts,
	}
}
