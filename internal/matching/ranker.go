package matching

import (
	"fmt"
	"time"

	"delegation-workers/internal/models"
)

const (
	weightExperience   = 0.25
	weightQuality      = 0.20
	weightHistory      = 0.15
	weightAvailability = 0.10

	preferredBonus     = 0.10
	recencyBonus       = 0.05
	inactivityPenalty  = 0.05
	recentActivityDays = 7
	inactivityDays     = 30

	strongExperience    = 0.8
	weakExperience      = 0.5
	excellentRating     = 4.5
	poorRating          = 3.5
	goodAvailability    = 0.8
	limitedAvailability = 0.5
)

// note is a conditional message; collect keeps the ones that apply, in order.
type note struct {
	applies bool
	text    string
}

func collect(notes ...note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.applies {
			out = append(out, n.text)
		}
	}
	return out
}

// ComputeMatch scores one candidate against the criteria. The result depends only on its arguments.
func ComputeMatch(c models.Candidate, cr models.Criteria, now time.Time) models.MatchResult {
	b := Breakdown(c, cr, now)

	score := b.Specialty +
		weightExperience*b.Experience +
		weightQuality*b.Quality +
		weightHistory*b.History +
		weightAvailability*b.Availability

	specialist := hasSpecialty(c, cr.LegalArea)
	preferred := isPreferred(c.ID, cr.PreferredProviders)
	if preferred {
		score += preferredBonus
	}

	days, known := DaysSinceLastActive(c, now)
	recent := known && days <= recentActivityDays
	inactive := known && days > inactivityDays
	switch {
	case recent:
		score += recencyBonus
	case inactive:
		score -= inactivityPenalty
	}

	return models.MatchResult{
		ProviderID:     c.ID,
		ProviderName:   c.Name,
		MatchScore:     clamp01(score),
		EstimatedPrice: EstimatePrice(cr.ServiceType, cr.LegalArea, cr.Urgency, c.Experience, cr.EstimatedHours),
		Reasons: collect(
			note{specialist, fmt.Sprintf("Especialista em %s", cr.LegalArea)},
			note{b.Experience >= strongExperience, fmt.Sprintf("Experiência compatível (%s)", c.Experience)},
			note{c.QualityRating >= excellentRating, fmt.Sprintf("Excelente avaliação (%.1f/5)", c.QualityRating)},
			note{c.TotalJobs >= historySolidThreshold, fmt.Sprintf("Histórico sólido: %d de %d trabalhos concluídos", c.CompletedJobs, c.TotalJobs)},
			note{c.TotalJobs >= historyMinimumJobs && c.TotalJobs < historySolidThreshold, fmt.Sprintf("Histórico em formação: %d trabalhos realizados", c.TotalJobs)},
			note{b.Availability >= goodAvailability, "Boa disponibilidade"},
			note{preferred, "Prestador preferencial"},
			note{recent, "Ativo recentemente"},
		),
		Warnings: collect(
			note{!specialist, fmt.Sprintf("Sem especialização em %s", cr.LegalArea)},
			note{b.Experience < weakExperience, fmt.Sprintf("Experiência abaixo do exigido (%s)", cr.RequiredExperience)},
			note{c.QualityRating < poorRating, fmt.Sprintf("Avaliação abaixo da média (%.1f/5)", c.QualityRating)},
			note{c.TotalJobs < historyMinimumJobs, "Pouco histórico na plataforma"},
			note{b.Availability < limitedAvailability, "Disponibilidade limitada"},
			note{inactive, fmt.Sprintf("Inativo há %d dias", days)},
		),
	}
}

func isPreferred(id string, preferred []string) bool {
	for _, p := range preferred {
		if p == id {
			return true
		}
	}
	return false
}
