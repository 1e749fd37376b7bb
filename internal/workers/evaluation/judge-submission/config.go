// internal/workers/evaluation/judge-submission/config.go
package judgesubmission

import "time"

type Config struct {
	Timeout         time.Duration
	JudgeTimeout    time.Duration // per submission; 0 uses the job timeout only
	FallbackEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         90 * time.Second,
		JudgeTimeout:    60 * time.Second,
		FallbackEnabled: true,
	}
}
