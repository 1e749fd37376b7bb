package models

// MatchResult is the scored view of one candidate. It is a value and is never mutated after creation.
type MatchResult struct {
	ProviderID     string   `json:"providerId"`
	ProviderName   string   `json:"providerName"`
	MatchScore     float64  `json:"matchScore"`
	EstimatedPrice float64  `json:"estimatedPrice"`
	Reasons        []string `json:"reasons"`
	Warnings       []string `json:"warnings"`
}

type MatchingOutcome struct {
	TotalCandidates   int           `json:"totalCandidates"`
	SkippedCandidates int           `json:"skippedCandidates"`
	Matches           []MatchResult `json:"matches"`
	BestMatch         *MatchResult  `json:"bestMatch,omitempty"`
	AverageScore      float64       `json:"averageScore"`
	Criteria          Criteria      `json:"criteria"`
}
