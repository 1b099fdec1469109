package models

import "time"

const (
	MinScale = 1
	MaxScale = 5

	// CriticalMoodThreshold is the highest mood value flagged as critical.
	CriticalMoodThreshold = 2
)

var moodLabels = map[int]string{
	1: "Very Low",
	2: "Low",
	3: "Neutral",
	4: "High",
	5: "Very High",
}

var moodStates = map[int]string{
	1: "Bad mental state",
	2: "Struggling",
	3: "Balanced",
	4: "Positive",
	5: "Cheerful",
}

type MoodRecord struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	OwnerID           uint      `gorm:"not null;index:idx_mood_records_owner_created,priority:1" json:"owner_id"`
	CreatedAt         time.Time `gorm:"not null;index:idx_mood_records_owner_created,priority:2" json:"created_at"`
	Mood              int       `gorm:"not null" json:"mood"`
	StressLevel       int       `gorm:"not null" json:"stress_level"`
	PhysicalTiredness int       `gorm:"not null" json:"physical_tiredness"`
	MentalTiredness   int       `gorm:"not null" json:"mental_tiredness"`
	MotivationLevel   int       `gorm:"not null" json:"motivation_level"`
	SleepHours        float64   `gorm:"not null" json:"sleep_hours"`
	WaterLiters       float64   `gorm:"not null" json:"water_liters"`
	ScreenHours       float64   `gorm:"not null" json:"screen_hours"`
	WorkStudyHours    float64   `gorm:"not null" json:"work_study_hours"`
	CaffeineCups      int       `gorm:"not null" json:"caffeine_cups"`
	Trained           bool      `gorm:"not null" json:"trained"`
	SocialInteraction bool      `gorm:"not null" json:"social_interaction"`
	AteHealthy        bool      `gorm:"not null" json:"ate_healthy"`
	SpentTimeOutside  bool      `gorm:"not null" json:"spent_time_outside"`
	Meditated         bool      `gorm:"not null" json:"meditated"`
	EnoughSleepWeek   bool      `gorm:"not null" json:"enough_sleep_week"`
	SuicidalThoughts  bool      `gorm:"not null" json:"suicidal_thoughts"`
	Critical          bool      `gorm:"not null;default:false" json:"critical"`
}

func (MoodRecord) TableName() string {
	return "mood_records"
}

func IsCriticalMood(mood int) bool {
	return mood <= CriticalMoodThreshold
}

func MoodLabel(mood int) string {
	if label, ok := moodLabels[mood]; ok {
		return label
	}
	return "Unknown"
}

func MoodState(mood int) string {
	if state, ok := moodStates[mood]; ok {
		return state
	}
	return "Unknown"
}
