package services

import "github.com/terraincognita07/innercalm/internal/models"

type Suggestion struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Tips     []string `json:"tips"`
}

type suggestionRule struct {
	applies    func(record models.MoodRecord) bool
	suggestion Suggestion
}

var suggestionRules = []suggestionRule{
	{
		applies: func(record models.MoodRecord) bool { return record.SleepHours < 7 },
		suggestion: Suggestion{
			Category: "Sleep",
			Title:    "Improve Sleep Quality",
			Tips: []string{
				"Try to maintain a consistent sleep schedule",
				"Avoid screens 1 hour before bedtime",
				"Create a relaxing bedtime routine",
				"Aim for 7-9 hours of sleep",
			},
		},
	},
	{
		applies: func(record models.MoodRecord) bool { return record.Mood <= 3 || record.StressLevel >= 4 },
		suggestion: Suggestion{
			Category: "Mental Wellness",
			Title:    "Mood & Stress Management",
			Tips: []string{
				"Practice deep breathing exercises",
				"Take regular breaks during work",
				"Spend time in nature",
				"Connect with friends or family",
			},
		},
	},
	{
		applies: func(record models.MoodRecord) bool { return !record.Trained },
		suggestion: Suggestion{
			Category: "Physical Activity",
			Title:    "Increase Physical Activity",
			Tips: []string{
				"Start with a 10-minute walk",
				"Try simple stretching exercises",
				"Take the stairs instead of elevator",
				"Consider joining a fitness class",
			},
		},
	},
	{
		applies: func(record models.MoodRecord) bool { return record.WaterLiters < 2 || !record.AteHealthy },
		suggestion: Suggestion{
			Category: "Nutrition & Hydration",
			Title:    "Improve Diet & Hydration",
			Tips: []string{
				"Set reminders to drink water",
				"Prepare healthy snacks in advance",
				"Include more fruits and vegetables",
				"Track your water intake",
			},
		},
	},
	{
		applies: func(record models.MoodRecord) bool { return !record.SocialInteraction },
		suggestion: Suggestion{
			Category: "Social Connection",
			Title:    "Enhance Social Connections",
			Tips: []string{
				"Reach out to a friend or family member",
				"Join a community group or club",
				"Participate in social activities",
				"Consider volunteering",
			},
		},
	},
	{
		applies: func(record models.MoodRecord) bool { return !record.Meditated || record.MentalTiredness >= 4 },
		suggestion: Suggestion{
			Category: "Mindfulness",
			Title:    "Practice Mindfulness",
			Tips: []string{
				"Start with 5-minute meditation sessions",
				"Try guided meditation apps",
				"Practice mindful walking",
				"Take mindful breaks during the day",
			},
		},
	},
}

func BuildSuggestions(record models.MoodRecord) []Suggestion {
	suggestions := make([]Suggestion, 0, len(suggestionRules))
	for _, rule := range suggestionRules {
		if rule.applies(record) {
			suggestions = append(suggestions, rule.suggestion)
		}
	}
	return suggestions
}
