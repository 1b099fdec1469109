package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/innercalm/internal/models"
)

// MoodSurveyInput is the raw survey payload. Pointer fields let the
// validator tell a missing answer from a zero or false one.
type MoodSurveyInput struct {
	SleepHours        *float64 `json:"sleep_hours" validate:"required,gte=0,lte=24"`
	Trained           *bool    `json:"trained" validate:"required"`
	Mood              *int     `json:"mood" validate:"required,gte=1,lte=5"`
	StressLevel       *int     `json:"stress_level" validate:"required,gte=1,lte=5"`
	WaterLiters       *float64 `json:"water_liters" validate:"required,gte=0,lte=10"`
	CaffeineCups      *int     `json:"caffeine_cups" validate:"required,gte=0,lte=10"`
	SocialInteraction *bool    `json:"social_interaction" validate:"required"`
	ScreenHours       *float64 `json:"screen_hours" validate:"required,gte=0,lte=24"`
	AteHealthy        *bool    `json:"ate_healthy" validate:"required"`
	SpentTimeOutside  *bool    `json:"spent_time_outside" validate:"required"`
	Meditated         *bool    `json:"meditated" validate:"required"`
	WorkStudyHours    *float64 `json:"work_study_hours" validate:"required,gte=0,lte=16"`
	EnoughSleepWeek   *bool    `json:"enough_sleep_week" validate:"required"`
	PhysicalTiredness *int     `json:"physical_tiredness" validate:"required,gte=1,lte=5"`
	MentalTiredness   *int     `json:"mental_tiredness" validate:"required,gte=1,lte=5"`
	MotivationLevel   *int     `json:"motivation_level" validate:"required,gte=1,lte=5"`
	SuicidalThoughts  *bool    `json:"suicidal_thoughts" validate:"required"`
}

var surveyValidate = newSurveyValidator()

func newSurveyValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// ValidateMoodSurvey checks every field of input and converts it into an
// unsaved record. Identity, timestamp and the critical flag are left for
// the submission pipeline.
func ValidateMoodSurvey(input MoodSurveyInput) (models.MoodRecord, error) {
	if err := surveyValidate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return models.MoodRecord{}, err
		}
		validationErr := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
		for _, fieldErr := range fieldErrs {
			validationErr.Fields = append(validationErr.Fields, FieldError{
				Field: fieldErr.Field(),
				Rule:  fieldErr.Tag(),
				Param: fieldErr.Param(),
			})
		}
		return models.MoodRecord{}, validationErr
	}

	return models.MoodRecord{
		Mood:              *input.Mood,
		StressLevel:       *input.StressLevel,
		PhysicalTiredness: *input.PhysicalTiredness,
		MentalTiredness:   *input.MentalTiredness,
		MotivationLevel:   *input.MotivationLevel,
		SleepHours:        *input.SleepHours,
		WaterLiters:       *input.WaterLiters,
		ScreenHours:       *input.ScreenHours,
		WorkStudyHours:    *input.WorkStudyHours,
		CaffeineCups:      *input.CaffeineCups,
		Trained:           *input.Trained,
		SocialInteraction: *input.SocialInteraction,
		AteHealthy:        *input.AteHealthy,
		SpentTimeOutside:  *input.SpentTimeOutside,
		Meditated:         *input.Meditated,
		EnoughSleepWeek:   *input.EnoughSleepWeek,
		SuicidalThoughts:  *input.SuicidalThoughts,
	}, nil
}
