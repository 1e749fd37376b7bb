// internal/workers/matching/auto-assign-provider/models.go
package autoassignprovider

import (
	"time"

	"delegation-workers/internal/models"
)

type Input struct {
	WorkItemID string             `json:"workItemId"`
	Criteria   models.Criteria    `json:"criteria"`
	Candidates []models.Candidate `json:"candidates,omitempty"`
	MinScore   *float64           `json:"minScore,omitempty"` // absent means Config.DefaultMinScore; must be in (0,1]
	Now        *time.Time         `json:"now,omitempty"`
}

type Output struct {
	AssignmentID   string   `json:"assignmentId"`
	WorkItemID     string   `json:"workItemId"`
	ProviderID     string   `json:"providerId"`
	ProviderName   string   `json:"providerName"`
	MatchScore     float64  `json:"matchScore"`
	EstimatedPrice float64  `json:"estimatedPrice"`
	Reasons        []string `json:"reasons"`
	Warnings       []string `json:"warnings"`
	Status         string   `json:"status"`
	AssignedAt     string   `json:"assignedAt"` // ISO 8601
	PoolSource     string   `json:"poolSource"`
}

// Auto-assign outcome labels
const (
	OutcomeAssigned    = "assigned"
	OutcomeNoCandidate = "no_qualifying_candidate"
	OutcomeDuplicate   = "duplicate"
)
