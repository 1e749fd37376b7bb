package matching

import (
	"fmt"
	"time"

	"delegation-workers/internal/models"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func hours(h float64) *float64 {
	return &h
}

// seniorCivilist is the well-qualified provider used across scenarios.
func seniorCivilist() models.Candidate {
	return models.Candidate{
		ID:            "prov-001",
		Name:          "Ana Souza",
		Experience:    models.ExperienceSenior,
		Specialties:   []string{"civil"},
		QualityRating: 4.8,
		TotalJobs:     20,
		CompletedJobs: 19,
		Availability:  models.AvailabilityImmediate,
		LastActive:    daysAgo(0),
	}
}

// middlingCandidate scores 0.655 against civilCriteria.
func middlingCandidate() models.Candidate {
	return models.Candidate{
		ID:            "prov-050",
		Name:          "Bruno Lima",
		Experience:    models.ExperienceSenior,
		Specialties:   []string{"tributario"},
		QualityRating: 3.75,
		TotalJobs:     3,
		CompletedJobs: 3,
		Availability:  models.AvailabilityWeek,
		LastActive:    daysAgo(10),
	}
}

// weakCandidate lands below the matching floor against civilCriteria.
func weakCandidate() models.Candidate {
	return models.Candidate{
		ID:           "prov-099",
		Name:         "Carlos Dias",
		Experience:   models.ExperienceJunior,
		Specialties:  []string{"penal"},
		Availability: models.AvailabilityUnspecified,
		LastActive:   daysAgo(60),
	}
}

func civilCriteria() models.Criteria {
	return models.Criteria{
		LegalArea:          "civil",
		Urgency:            models.UrgencyMedium,
		RequiredExperience: models.ExperiencePleno,
	}
}

func clonePool(base models.Candidate, n int) []models.Candidate {
	pool := make([]models.Candidate, n)
	for i := range pool {
		c := base
		c.ID = fmt.Sprintf("prov-%03d", i)
		c.Name = fmt.Sprintf("Provider %d", i)
		pool[i] = c
	}
	return pool
}
