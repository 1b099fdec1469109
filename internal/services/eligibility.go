package services

import "time"

// DefaultCooldownWindow matches the server of record; clients read the
// configured value from the can-submit endpoint instead of hard-coding it.
const DefaultCooldownWindow = 12 * time.Hour

type Eligibility struct {
	Allowed         bool
	LastSubmission  *time.Time
	CooldownWindow  time.Duration
	NextAvailableAt *time.Time
}

// EvaluateEligibility decides whether an owner whose latest accepted
// submission is last may submit at now.
func EvaluateEligibility(last *time.Time, now time.Time, window time.Duration) Eligibility {
	decision := Eligibility{
		Allowed:        true,
		CooldownWindow: window,
	}
	if last == nil {
		return decision
	}

	lastSubmission := *last
	decision.LastSubmission = &lastSubmission

	nextAvailable := lastSubmission.Add(window)
	if now.Before(nextAvailable) {
		decision.Allowed = false
		decision.NextAvailableAt = &nextAvailable
	}
	return decision
}
