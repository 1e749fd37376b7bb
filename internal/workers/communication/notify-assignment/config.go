// internal/workers/communication/notify-assignment/config.go
package notifyassignment

import "time"

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	// FailOnSendError turns a delivery failure into a retryable job failure
	// instead of a "failed" status.
	FailOnSendError bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@delegation.local",
	}
}
