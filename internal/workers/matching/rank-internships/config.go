package rankinternships

import (
	"time"

	"internship-workers/internal/common/config"
	"internship-workers/internal/matching"
)

type Config struct {
	Timeout      time.Duration
	Matching     matching.MatchConfig
	TopN         int
	CatalogLimit int
}

func LoadConfig(wcfg config.WorkerConfig, mcfg config.MatchingConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Timeout:      timeout,
		Matching:     mcfg.MatchConfig(),
		TopN:         mcfg.TopN,
		CatalogLimit: mcfg.CatalogLimit,
	}
}
