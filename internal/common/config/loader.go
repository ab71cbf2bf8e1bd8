// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"internship-workers/internal/matching"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers defaults that must survive an explicit false or zero
// in the file, which applyDefaults cannot tell apart from "unset".
func setDefaults(v *viper.Viper) {
	d := matching.DefaultMatchConfig()

	v.SetDefault("app.name", "internship-workers")
	v.SetDefault("camunda.use_plaintext", true)

	v.SetDefault("matching.top_n", matching.DefaultTopN)
	v.SetDefault("matching.weights.required", d.Weights.Required)
	v.SetDefault("matching.weights.preferred", d.Weights.Preferred)
	v.SetDefault("matching.weights.location", d.Weights.Location)
	v.SetDefault("matching.weights.sector", d.Weights.Sector)
	v.SetDefault("matching.weights.modality", d.Weights.Modality)
	v.SetDefault("matching.require_all_required_skills", d.RequireAllRequiredSkills)
	v.SetDefault("matching.deadline_filter", d.DeadlineFilter)
	v.SetDefault("matching.capacity_filter", d.CapacityFilter)
	v.SetDefault("matching.preference_penalty_weight", d.PreferencePenaltyWeight)
	v.SetDefault("matching.catalog_source", CatalogSourcePostgres)
	v.SetDefault("matching.catalog_limit", 500)
	v.SetDefault("matching.profile_cache_ttl", 600000)

	v.SetDefault("notifications.max_items", 3)
	v.SetDefault("observability.metrics_address", ":8080")
	v.SetDefault("observability.tracing.sample_ratio", 1.0)
}

// loadEnvFile loads the first .env found from the working directory upwards.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.InternshipIdx == "" {
		cfg.Database.Elasticsearch.InternshipIdx = "internships"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}

	cfg.Matching.CatalogSource = strings.ToLower(strings.TrimSpace(cfg.Matching.CatalogSource))

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Matching.CatalogSource == CatalogSourceElasticsearch && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when matching.catalog_source is elasticsearch")
	}

	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required when email is enabled")
	}

	if err := cfg.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	return nil
}

func (m MatchingConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.TopN, validation.Min(0)),
		validation.Field(&m.Weights),
		validation.Field(&m.PreferencePenaltyWeight, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&m.CatalogSource, validation.Required, validation.In(CatalogSourcePostgres, CatalogSourceElasticsearch)),
		validation.Field(&m.CatalogLimit, validation.Min(0)),
		validation.Field(&m.ProfileCacheTTL, validation.Min(0)),
	)
}

func (w WeightsConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Required, validation.Min(0.0)),
		validation.Field(&w.Preferred, validation.Min(0.0)),
		validation.Field(&w.Location, validation.Min(0.0)),
		validation.Field(&w.Sector, validation.Min(0.0)),
		validation.Field(&w.Modality, validation.Min(0.0)),
	)
}

// MatchConfig converts the configured defaults into the engine's form.
func (m MatchingConfig) MatchConfig() matching.MatchConfig {
	return matching.MatchConfig{
		Weights: matching.Weights{
			Required:  m.Weights.Required,
			Preferred: m.Weights.Preferred,
			Location:  m.Weights.Location,
			Sector:    m.Weights.Sector,
			Modality:  m.Weights.Modality,
		},
		RequireAllRequiredSkills: m.RequireAllRequiredSkills,
		DeadlineFilter:           m.DeadlineFilter,
		CapacityFilter:           m.CapacityFilter,
		PreferencePenaltyWeight:  m.PreferencePenaltyWeight,
	}
}

// AliasTable returns the built-in skill aliases extended with configured ones.
func (m MatchingConfig) AliasTable() matching.AliasTable {
	return matching.DefaultAliases().Merge(matching.AliasTable(m.SkillAliases))
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
