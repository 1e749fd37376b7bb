// internal/workers/matching/estimate-price/models.go
package estimateprice

import "delegation-workers/internal/models"

type Input struct {
	ServiceType    string                 `json:"serviceType"`
	LegalArea      string                 `json:"legalArea,omitempty"`
	Urgency        models.UrgencyTier     `json:"urgency"`
	Experience     models.ExperienceLevel `json:"experience"`
	EstimatedHours *float64               `json:"estimatedHours,omitempty"`
}

type Output struct {
	EstimatedPrice float64 `json:"estimatedPrice"`
	Hours          float64 `json:"hours"`
	Currency       string  `json:"currency"`
}
