package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/innercalm/internal/models"
)

const StatsWindowDays = 30

type StatsRecordReader interface {
	ListSince(ctx context.Context, since time.Time) ([]models.MoodRecord, error)
	CountOwners(ctx context.Context) (int64, error)
}

type DailyAverage struct {
	Date                 string  `json:"date"`
	AvgMood              float64 `json:"avg_mood"`
	AvgStress            float64 `json:"avg_stress"`
	AvgPhysicalTiredness float64 `json:"avg_physical_tiredness"`
	AvgMentalTiredness   float64 `json:"avg_mental_tiredness"`
	AvgMotivation        float64 `json:"avg_motivation"`
	TotalEntries         int     `json:"total_entries"`
}

type ActivityPercentages struct {
	Exercise          float64 `json:"exercise"`
	Meditation        float64 `json:"meditation"`
	HealthyEating     float64 `json:"healthy_eating"`
	SocialInteraction float64 `json:"social_interaction"`
}

type MoodDistribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type StatsOverview struct {
	TotalUsers           int64                `json:"total_users"`
	DailyAverages        []DailyAverage       `json:"daily_averages"`
	ActivityPercentages  *ActivityPercentages `json:"activity_percentages"`
	CriticalCases        int                  `json:"critical_cases"`
	MoodDistribution     *MoodDistribution    `json:"mood_distribution"`
	SurveyCompletionRate float64              `json:"survey_completion_rate"`
}

type AdminStatsService struct {
	records StatsRecordReader
}

func NewAdminStatsService(records StatsRecordReader) *AdminStatsService {
	return &AdminStatsService{records: records}
}

func (service *AdminStatsService) Overview(ctx context.Context, now time.Time) (StatsOverview, error) {
	owners, err := service.records.CountOwners(ctx)
	if err != nil {
		return StatsOverview{}, &StoreError{Op: "count owners", Err: err}
	}
	records, err := service.records.ListSince(ctx, now.AddDate(0, 0, -StatsWindowDays))
	if err != nil {
		return StatsOverview{}, &StoreError{Op: "list recent mood records", Err: err}
	}
	return BuildStatsOverview(records, owners), nil
}

// BuildStatsOverview aggregates the records of the stats window. Percentages
// are left nil when there are no entries.
func BuildStatsOverview(records []models.MoodRecord, owners int64) StatsOverview {
	overview := StatsOverview{
		TotalUsers:    owners,
		DailyAverages: buildDailyAverages(records),
	}

	total := len(records)
	if owners > 0 {
		overview.SurveyCompletionRate = roundTo(float64(total)/float64(owners*StatsWindowDays)*100, 1)
	}
	if total == 0 {
		return overview
	}

	var trained, meditated, ateHealthy, social int
	var positive, neutral, negative int
	for _, record := range records {
		if record.Trained {
			trained++
		}
		if record.Meditated {
			meditated++
		}
		if record.AteHealthy {
			ateHealthy++
		}
		if record.SocialInteraction {
			social++
		}
		switch {
		case record.Mood >= 4:
			positive++
		case record.Mood == 3:
			neutral++
		default:
			negative++
		}
		if models.IsCriticalMood(record.Mood) {
			overview.CriticalCases++
		}
	}

	overview.ActivityPercentages = &ActivityPercentages{
		Exercise:          percentage(trained, total),
		Meditation:        percentage(meditated, total),
		HealthyEating:     percentage(ateHealthy, total),
		SocialInteraction: percentage(social, total),
	}
	overview.MoodDistribution = &MoodDistribution{
		Positive: percentage(positive, total),
		Neutral:  percentage(neutral, total),
		Negative: percentage(negative, total),
	}
	return overview
}

func buildDailyAverages(records []models.MoodRecord) []DailyAverage {
	type daySums struct {
		mood, stress, physical, mental, motivation, count int
	}

	byDay := make(map[string]*daySums)
	for _, record := range records {
		key := record.CreatedAt.UTC().Format("2006-01-02")
		sums, ok := byDay[key]
		if !ok {
			sums = &daySums{}
			byDay[key] = sums
		}
		sums.mood += record.Mood
		sums.stress += record.StressLevel
		sums.physical += record.PhysicalTiredness
		sums.mental += record.MentalTiredness
		sums.motivation += record.MotivationLevel
		sums.count++
	}

	averages := make([]DailyAverage, 0, len(byDay))
	for day, sums := range byDay {
		count := float64(sums.count)
		averages = append(averages, DailyAverage{
			Date:                 day,
			AvgMood:              roundTo(float64(sums.mood)/count, 2),
			AvgStress:            roundTo(float64(sums.stress)/count, 2),
			AvgPhysicalTiredness: roundTo(float64(sums.physical)/count, 2),
			AvgMentalTiredness:   roundTo(float64(sums.mental)/count, 2),
			AvgMotivation:        roundTo(float64(sums.motivation)/count, 2),
			TotalEntries:         sums.count,
		})
	}
	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Date < averages[j].Date
	})
	return averages
}

func percentage(part int, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo(float64(part)/float64(total)*100, 2)
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
