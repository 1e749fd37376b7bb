// cmd/tools/matchctl/fixture.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"delegation-workers/internal/models"
)

type fixture struct {
	Now        *time.Time         `toml:"now"`
	MinScore   float64            `toml:"min_score"`
	Criteria   criteriaFixture    `toml:"criteria"`
	Candidates []candidateFixture `toml:"candidates"`
	Items      []itemFixture      `toml:"items"`
}

type criteriaFixture struct {
	LegalArea          string     `toml:"legal_area"`
	ServiceType        string     `toml:"service_type"`
	Urgency            string     `toml:"urgency"`
	RequiredExperience string     `toml:"required_experience"`
	EstimatedHours     *float64   `toml:"estimated_hours"`
	Deadline           *time.Time `toml:"deadline"`
	Complexity         string     `toml:"complexity"`
	PreferredProviders []string   `toml:"preferred_providers"`
}

type candidateFixture struct {
	ID            string     `toml:"id"`
	Name          string     `toml:"name"`
	Experience    string     `toml:"experience"`
	Specialties   []string   `toml:"specialties"`
	QualityRating float64    `toml:"quality_rating"`
	TotalJobs     int        `toml:"total_jobs"`
	CompletedJobs int        `toml:"completed_jobs"`
	Availability  string     `toml:"availability"`
	LastActive    *time.Time `toml:"last_active"`
}

type itemFixture struct {
	Technical       float64  `toml:"technical"`
	Argumentation   float64  `toml:"argumentation"`
	Formatting      float64  `toml:"formatting"`
	Feedback        string   `toml:"feedback"`
	Strengths       []string `toml:"strengths"`
	Improvements    []string `toml:"improvements"`
	Recommendations []string `toml:"recommendations"`
}

func loadFixture(path string) (*fixture, error) {
	if path == "" {
		return nil, fmt.Errorf("a fixture file is required (-f)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

func (c criteriaFixture) toModel() models.Criteria {
	return models.Criteria{
		LegalArea:          c.LegalArea,
		ServiceType:        c.ServiceType,
		Urgency:            models.UrgencyTier(c.Urgency),
		RequiredExperience: models.ExperienceLevel(c.RequiredExperience),
		EstimatedHours:     c.EstimatedHours,
		Deadline:           c.Deadline,
		Complexity:         models.ComplexityTier(c.Complexity),
		PreferredProviders: c.PreferredProviders,
	}
}

func (f *fixture) pool() []models.Candidate {
	pool := make([]models.Candidate, 0, len(f.Candidates))
	for _, c := range f.Candidates {
		availability := models.AvailabilityTier(c.Availability)
		if availability == "" {
			availability = models.AvailabilityUnspecified
		}
		pool = append(pool, models.Candidate{
			ID:            c.ID,
			Name:          c.Name,
			Experience:    models.ExperienceLevel(c.Experience),
			Specialties:   c.Specialties,
			QualityRating: c.QualityRating,
			TotalJobs:     c.TotalJobs,
			CompletedJobs: c.CompletedJobs,
			Availability:  availability,
			LastActive:    c.LastActive,
		})
	}
	return pool
}

func (f *fixture) evaluationItems() []models.EvaluationItem {
	items := make([]models.EvaluationItem, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, models.EvaluationItem{
			Technical:       it.Technical,
			Argumentation:   it.Argumentation,
			Formatting:      it.Formatting,
			Feedback:        it.Feedback,
			Strengths:       it.Strengths,
			Improvements:    it.Improvements,
			Recommendations: it.Recommendations,
		})
	}
	return items
}
