// Package config provides configuration management for the value-bet engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Estimator    EstimatorConfig    `mapstructure:"estimator" validate:"required"`
	Matcher      MatcherConfig      `mapstructure:"matcher" validate:"required"`
	Evaluator    EvaluatorConfig    `mapstructure:"evaluator" validate:"required"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit" validate:"required"`
	Verification VerificationConfig `mapstructure:"verification" validate:"required"`
	Providers    ProvidersConfig    `mapstructure:"providers" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// EstimatorConfig represents probability estimator hyperparameters.
// The blend weight and line step were chosen empirically, not derived,
// which is why they are configuration rather than constants.
type EstimatorConfig struct {
	DecayFactor        float64 `mapstructure:"decay_factor" validate:"required,gt=0,lte=1"`
	ProbabilityBandMin float64 `mapstructure:"probability_band_min" validate:"required,gt=0,lt=1"`
	ProbabilityBandMax float64 `mapstructure:"probability_band_max" validate:"required,gt=0,lt=1"`
	LineStep           float64 `mapstructure:"line_step" validate:"required,gt=0"`
	BlendWeight        float64 `mapstructure:"blend_weight" validate:"required,gte=0,lte=1"`
}

// MatcherConfig represents entity matcher thresholds
type MatcherConfig struct {
	MinSimilarity   float64 `mapstructure:"min_similarity" validate:"required,gt=0,lte=1"`
	DateWindowHours int     `mapstructure:"date_window_hours" validate:"required,gt=0"`
	MinConfidence   float64 `mapstructure:"min_confidence" validate:"required,gt=0,lte=1"`
	AliasFile       string  `mapstructure:"alias_file"`
}

// EvaluatorConfig represents expected-value evaluator configuration
type EvaluatorConfig struct {
	MinEV              float64  `mapstructure:"min_ev" validate:"gte=0"`
	UnitValue          float64  `mapstructure:"unit_value" validate:"required,gt=0"`
	PlayableBookmakers []string `mapstructure:"playable_bookmakers"`
}

// RateLimitConfig represents result-provider quota configuration
type RateLimitConfig struct {
	MaxCallsPerDay         int `mapstructure:"max_calls_per_day" validate:"required,gt=0"`
	MaxCallsPerHour        int `mapstructure:"max_calls_per_hour" validate:"required,gt=0"`
	MinDelayBetweenCallsMs int `mapstructure:"min_delay_between_calls_ms" validate:"gte=0"`
	CacheExpiryHours       int `mapstructure:"cache_expiry_hours" validate:"required,gt=0"`
}

// VerificationConfig represents bulk verification behavior
type VerificationConfig struct {
	BulkDelayMs  int    `mapstructure:"bulk_delay_ms" validate:"required,gte=500"`
	CronSchedule string `mapstructure:"cron_schedule"`
}

// ProvidersConfig represents external data provider configuration
type ProvidersConfig struct {
	Stats  ProviderConfig `mapstructure:"stats" validate:"required"`
	Odds   ProviderConfig `mapstructure:"odds" validate:"required"`
	Result ProviderConfig `mapstructure:"result" validate:"required"`
}

// ProviderConfig represents a single external provider
type ProviderConfig struct {
	BaseURL   string `mapstructure:"base_url" validate:"required,url"`
	StreamURL string `mapstructure:"stream_url"`
	APIKey    string `mapstructure:"api_key"`
	Enabled   bool   `mapstructure:"enabled"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MinDelayBetweenCalls returns the minimum inter-call spacing as a duration
func (c *RateLimitConfig) MinDelayBetweenCalls() time.Duration {
	return time.Duration(c.MinDelayBetweenCallsMs) * time.Millisecond
}

// CacheExpiry returns the result cache TTL as a duration
func (c *RateLimitConfig) CacheExpiry() time.Duration {
	return time.Duration(c.CacheExpiryHours) * time.Hour
}

// BulkDelay returns the inter-call delay for bulk verification
func (c *VerificationConfig) BulkDelay() time.Duration {
	return time.Duration(c.BulkDelayMs) * time.Millisecond
}

// DateWindow returns the matcher date window as a duration
func (c *MatcherConfig) DateWindow() time.Duration {
	return time.Duration(c.DateWindowHours) * time.Hour
}
