// internal/workers/matching/find-provider-matches/models.go
package findprovidermatches

import (
	"time"

	"delegation-workers/internal/models"
)

type Input struct {
	WorkItemID string             `json:"workItemId,omitempty"`
	Criteria   models.Criteria    `json:"criteria"`
	Candidates []models.Candidate `json:"candidates,omitempty"` // absent means the roster is queried
	Now        *time.Time         `json:"now,omitempty"`
}

type Output struct {
	WorkItemID        string               `json:"workItemId,omitempty"`
	TotalCandidates   int                  `json:"totalCandidates"`
	SkippedCandidates int                  `json:"skippedCandidates"`
	Matches           []models.MatchResult `json:"matches"`
	BestMatch         *models.MatchResult  `json:"bestMatch,omitempty"`
	AverageScore      float64              `json:"averageScore"`
	HasMatches        bool                 `json:"hasMatches"`
	PoolSource        string               `json:"poolSource"`
}
