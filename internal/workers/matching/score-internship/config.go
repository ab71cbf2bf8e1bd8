package scoreinternship

import (
	"time"

	"internship-workers/internal/common/config"
	"internship-workers/internal/matching"
)

type Config struct {
	Timeout time.Duration
	// Matching is the service-wide base that job matchConfig patches apply to.
	Matching matching.MatchConfig
}

func LoadConfig(wcfg config.WorkerConfig, mcfg config.MatchingConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout:  timeout,
		Matching: mcfg.MatchConfig(),
	}
}
