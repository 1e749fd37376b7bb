package matching

import (
	"math"
	"strings"

	"delegation-workers/internal/models"
)

const DefaultEstimatedHours = 8.0

var baseHourlyRate = map[models.ExperienceLevel]float64{
	models.ExperienceJunior:       80,
	models.ExperiencePleno:        120,
	models.ExperienceSenior:       180,
	models.ExperienceEspecialista: 250,
}

var serviceMultiplier = map[string]float64{
	"petition": 1.0,
	"appeal":   1.2,
	"defense":  1.3,
	"contract": 0.8,
	"opinion":  0.9,
	"research": 0.7,
	"other":    1.0,
}

var urgencyMultiplier = map[models.UrgencyTier]float64{
	models.UrgencyLow:    0.9,
	models.UrgencyMedium: 1.0,
	models.UrgencyHigh:   1.3,
	models.UrgencyUrgent: 1.6,
}

// EstimatePrice returns round(rate × service × urgency × hours).
// legalArea is accepted but does not affect the price.
// Nil or non-positive hours fall back to DefaultEstimatedHours; unknown tiers price at the neutral rate.
func EstimatePrice(serviceType, legalArea string, urgency models.UrgencyTier, experience models.ExperienceLevel, estimatedHours *float64) float64 {
	rate, ok := baseHourlyRate[experience]
	if !ok {
		rate = baseHourlyRate[models.ExperiencePleno]
	}

	service, ok := serviceMultiplier[strings.ToLower(strings.TrimSpace(serviceType))]
	if !ok {
		service = 1.0
	}

	urg, ok := urgencyMultiplier[urgency]
	if !ok {
		urg = 1.0
	}

	hours := DefaultEstimatedHours
	if estimatedHours != nil && *estimatedHours > 0 {
		hours = *estimatedHours
	}

	return math.Round(rate * service * urg * hours)
}
