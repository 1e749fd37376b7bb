// internal/workers/evaluation/aggregate-evaluation/config.go
package aggregateevaluation

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
