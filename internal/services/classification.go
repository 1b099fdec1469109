package services

import (
	"context"

	"github.com/terraincognita07/innercalm/internal/models"
)

// Classification is the optional analysis returned by the scoring service.
type Classification struct {
	Prediction   string   `json:"prediction"`
	Confidence   float64  `json:"confidence"`
	MoodState    string   `json:"mood_state"`
	MoodLevel    int      `json:"mood_level"`
	Improvements []string `json:"improvements,omitempty"`
}

// Severe reports whether the classifier flagged the record as critical.
func (classification Classification) Severe() bool {
	return classification.MoodLevel >= models.MinScale && models.IsCriticalMood(classification.MoodLevel)
}

type Classifier interface {
	Classify(ctx context.Context, record models.MoodRecord, previous *models.MoodRecord) (Classification, error)
}

// DisabledClassifier is used when no scoring service is configured.
type DisabledClassifier struct{}

func (DisabledClassifier) Classify(context.Context, models.MoodRecord, *models.MoodRecord) (Classification, error) {
	return Classification{}, ErrClassificationUnavailable
}
