// internal/workers/evaluation/aggregate-evaluation/models.go
package aggregateevaluation

import "delegation-workers/internal/models"

type Input struct {
	ProviderID string                  `json:"providerId,omitempty"` // empty skips persistence
	Items      []models.EvaluationItem `json:"items"`
}

type Output struct {
	models.EvaluationOutcome
	EvaluationID string `json:"evaluationId,omitempty"`
	Persisted    bool   `json:"persisted"`
}
