// internal/workers/communication/notify-assignment/models.go
package notifyassignment

import "delegation-workers/internal/models"

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	AssignmentID   string             `json:"assignmentId"`
	WorkItemID     string             `json:"workItemId"`
	ProviderID     string             `json:"providerId"`
	ServiceType    string             `json:"serviceType,omitempty"`
	Urgency        models.UrgencyTier `json:"urgency,omitempty"`
	EstimatedPrice float64            `json:"estimatedPrice,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"`
}
