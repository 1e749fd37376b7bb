// internal/workers/matching/estimate-price/config.go
package estimateprice

import "time"

type Config struct {
	Timeout  time.Duration
	Currency string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		Currency: "BRL",
	}
}
