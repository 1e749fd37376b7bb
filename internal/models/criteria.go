package models

import "time"

type UrgencyTier string

const (
	UrgencyLow    UrgencyTier = "low"
	UrgencyMedium UrgencyTier = "medium"
	UrgencyHigh   UrgencyTier = "high"
	UrgencyUrgent UrgencyTier = "urgent"
)

func (u UrgencyTier) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent:
		return true
	}
	return false
}

type ComplexityTier string

const (
	ComplexitySimple   ComplexityTier = "simple"
	ComplexityModerate ComplexityTier = "moderate"
	ComplexityComplex  ComplexityTier = "complex"
)

// Criteria describes one work request that candidates are scored against.
type Criteria struct {
	LegalArea          string          `json:"legalArea"`
	ServiceType        string          `json:"serviceType"`
	Urgency            UrgencyTier     `json:"urgency"`
	RequiredExperience ExperienceLevel `json:"requiredExperience"`
	EstimatedHours     *float64        `json:"estimatedHours,omitempty"`
	Deadline           *time.Time      `json:"deadline,omitempty"`
	Complexity         ComplexityTier  `json:"complexity,omitempty"`
	PreferredProviders []string        `json:"preferredProviders,omitempty"`
}
