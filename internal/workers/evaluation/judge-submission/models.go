// internal/workers/evaluation/judge-submission/models.go
package judgesubmission

import "delegation-workers/internal/models"

type Input struct {
	ProviderID string `json:"providerId"`
	TestIndex  int    `json:"testIndex"`
	LegalArea  string `json:"legalArea"`
	Question   string `json:"question"`
	Rubric     string `json:"rubric,omitempty"`
	Answer     string `json:"answer"`
}

type Output struct {
	ProviderID     string                `json:"providerId"`
	TestIndex      int                   `json:"testIndex"`
	Item           models.EvaluationItem `json:"item"`
	Fallback       bool                  `json:"fallback"`
	FallbackReason string                `json:"fallbackReason,omitempty"`
}

// Fallback reasons, also used as metric labels
const (
	FallbackReasonTimeout = "timeout"
	FallbackReasonFailure = "judge_error"
)
