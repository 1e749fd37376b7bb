package matching

import (
	"math"
	"strings"
	"time"

	"delegation-workers/internal/models"
)

// Specialty carries its own weight: the value returned is the final contribution.
const (
	specialtyMatchedScore   = 0.3
	specialtyUnmatchedScore = 0.1
)

const (
	experienceAdjacentScore = 0.7
	experienceDistantScore  = 0.3

	historySolidThreshold  = 10
	historyMinimumJobs     = 5
	historyPartialFactor   = 0.8
	historyNeutralScore    = 0.5
	staleAvailabilityDays  = 14
	urgentNotImmediate     = 0.7
	lowUrgencyFlexibleLift = 1.1
	staleAvailabilityRatio = 0.8
)

var availabilityBase = map[models.AvailabilityTier]float64{
	models.AvailabilityImmediate:   1.0,
	models.AvailabilityWeek:        0.8,
	models.AvailabilityFlexible:    0.6,
	models.AvailabilityUnspecified: 0.5,
}

// ScoreBreakdown holds the five sub-scores of one candidate.
type ScoreBreakdown struct {
	Specialty    float64 `json:"specialty"`
	Experience   float64 `json:"experience"`
	Quality      float64 `json:"quality"`
	History      float64 `json:"history"`
	Availability float64 `json:"availability"`
}

func Breakdown(c models.Candidate, cr models.Criteria, now time.Time) ScoreBreakdown {
	return ScoreBreakdown{
		Specialty:    SpecialtyScore(c, cr),
		Experience:   ExperienceScore(c, cr),
		Quality:      QualityScore(c),
		History:      HistoryScore(c),
		Availability: AvailabilityScore(c, cr, now),
	}
}

func SpecialtyScore(c models.Candidate, cr models.Criteria) float64 {
	if hasSpecialty(c, cr.LegalArea) {
		return specialtyMatchedScore
	}
	return specialtyUnmatchedScore
}

func ExperienceScore(c models.Candidate, cr models.Criteria) float64 {
	gap := cr.RequiredExperience.Rank() - c.Experience.Rank()
	switch {
	case gap <= 0:
		return 1.0
	case gap == 1:
		return experienceAdjacentScore
	default:
		return experienceDistantScore
	}
}

func QualityScore(c models.Candidate) float64 {
	return clamp01(c.QualityRating / 5.0)
}

func HistoryScore(c models.Candidate) float64 {
	switch {
	case c.TotalJobs >= historySolidThreshold:
		return math.Min(completionRate(c), 1.0)
	case c.TotalJobs >= historyMinimumJobs:
		return completionRate(c) * historyPartialFactor
	default:
		return historyNeutralScore
	}
}

func AvailabilityScore(c models.Candidate, cr models.Criteria, now time.Time) float64 {
	score, ok := availabilityBase[c.Availability]
	if !ok {
		score = availabilityBase[models.AvailabilityUnspecified]
	}
	if cr.Urgency == models.UrgencyUrgent && c.Availability != models.AvailabilityImmediate {
		score *= urgentNotImmediate
	}
	if cr.Urgency == models.UrgencyLow && c.Availability == models.AvailabilityFlexible {
		score *= lowUrgencyFlexibleLift
	}
	if days, known := DaysSinceLastActive(c, now); known && days > staleAvailabilityDays {
		score *= staleAvailabilityRatio
	}
	return clamp01(score)
}

// DaysSinceLastActive returns whole days elapsed since the candidate was last active.
// The second value is false when the candidate has no recorded activity.
func DaysSinceLastActive(c models.Candidate, now time.Time) (int, bool) {
	if c.LastActive == nil {
		return 0, false
	}
	elapsed := now.Sub(*c.LastActive)
	if elapsed < 0 {
		return 0, true
	}
	return int(elapsed.Hours() / 24), true
}

func hasSpecialty(c models.Candidate, area string) bool {
	area = strings.TrimSpace(area)
	if area == "" {
		return false
	}
	for _, s := range c.Specialties {
		if strings.EqualFold(strings.TrimSpace(s), area) {
			return true
		}
	}
	return false
}

func completionRate(c models.Candidate) float64 {
	if c.TotalJobs <= 0 {
		return 0
	}
	return float64(c.CompletedJobs) / float64(c.TotalJobs)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
