// internal/workers/matching/auto-assign-provider/config.go
package autoassignprovider

import "time"

type Config struct {
	Timeout            time.Duration
	MinEvaluationScore float64
	DefaultMinScore    float64 // used when the job carries no minScore
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            30 * time.Second,
		MinEvaluationScore: 70,
		DefaultMinScore:    0.7,
	}
}
