// internal/workers/matching/find-provider-matches/config.go
package findprovidermatches

import "time"

type Config struct {
	Timeout            time.Duration
	MinEvaluationScore float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            30 * time.Second,
		MinEvaluationScore: 70,
	}
}
