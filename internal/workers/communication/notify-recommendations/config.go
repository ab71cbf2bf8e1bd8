package notifyrecommendations

import (
	"time"

	"internship-workers/internal/common/config"
)

const defaultMaxItems = 3

type Config struct {
	Timeout      time.Duration
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SenderID     string
	MaxItems     int
}

func LoadConfig(wcfg config.WorkerConfig, ncfg config.NotificationConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxItems := ncfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &Config{
		Timeout:      timeout,
		EmailEnabled: ncfg.Email.Enabled,
		FromEmail:    ncfg.Email.FromEmail,
		SMSEnabled:   ncfg.SMS.Enabled,
		SenderID:     ncfg.SMS.SenderID,
		MaxItems:     maxItems,
	}
}
