package models

import "time"

const (
	AssignmentStatusAssigned  = "assigned"
	AssignmentStatusCancelled = "cancelled"
)

type Assignment struct {
	ID             string    `json:"id" db:"id"`
	WorkItemID     string    `json:"workItemId" db:"work_item_id"`
	ProviderID     string    `json:"providerId" db:"provider_id"`
	MatchScore     float64   `json:"matchScore" db:"match_score"`
	EstimatedPrice float64   `json:"estimatedPrice" db:"estimated_price"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
