package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"olynk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   Engine         `mapstructure:"engine" yaml:"engine"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
}

// Engine holds every tunable threshold of the analysis pipeline.
type Engine struct {
	// Profiler
	TypeThreshold         float64 `mapstructure:"type_threshold" yaml:"type_threshold"`
	CategoricalRatio      float64 `mapstructure:"categorical_ratio" yaml:"categorical_ratio"`
	MaxCategories         int     `mapstructure:"max_categories" yaml:"max_categories"`
	IdentifierUniqueRatio float64 `mapstructure:"identifier_unique_ratio" yaml:"identifier_unique_ratio"`

	// Statistics
	SegmentBy      string `mapstructure:"segment_by" yaml:"segment_by"`
	MinSegmentRows int    `mapstructure:"min_segment_rows" yaml:"min_segment_rows"`

	// Trend
	DateColumn           string  `mapstructure:"date_column" yaml:"date_column"`
	Granularity          string  `mapstructure:"granularity" yaml:"granularity"`
	Aggregation          string  `mapstructure:"aggregation" yaml:"aggregation"`
	MinTrendBuckets      int     `mapstructure:"min_trend_buckets" yaml:"min_trend_buckets"`
	NoiseFraction        float64 `mapstructure:"noise_fraction" yaml:"noise_fraction"`
	SeasonalityThreshold float64 `mapstructure:"seasonality_threshold" yaml:"seasonality_threshold"`
	ForecastPeriods      int     `mapstructure:"forecast_periods" yaml:"forecast_periods"`

	// Anomaly
	ZScoreThreshold        float64 `mapstructure:"zscore_threshold" yaml:"zscore_threshold"`
	IQRMultiplier          float64 `mapstructure:"iqr_multiplier" yaml:"iqr_multiplier"`
	MultivariatePercentile float64 `mapstructure:"multivariate_percentile" yaml:"multivariate_percentile"`

	// Correlation
	MinCorrelationSamples         int `mapstructure:"min_correlation_samples" yaml:"min_correlation_samples"`
	RecommendedCorrelationSamples int `mapstructure:"recommended_correlation_samples" yaml:"recommended_correlation_samples"`

	// Synthesizer
	MinAnomalyScore    float64 `mapstructure:"min_anomaly_score" yaml:"min_anomaly_score"`
	MinTrendConfidence float64 `mapstructure:"min_trend_confidence" yaml:"min_trend_confidence"`
	SeverityHigh       float64 `mapstructure:"severity_high" yaml:"severity_high"`
	SeverityMedium     float64 `mapstructure:"severity_medium" yaml:"severity_medium"`
	MaxInsights        int     `mapstructure:"max_insights" yaml:"max_insights"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string `mapstructure:"port" yaml:"port"`
	GinMode        string `mapstructure:"gin_mode" yaml:"gin_mode"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	MaxRows        int    `mapstructure:"max_rows" yaml:"max_rows"`
	// MaxStoredReports caps the in-memory report store used without a database.
	MaxStoredReports int `mapstructure:"max_stored_reports" yaml:"max_stored_reports"`
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// reports in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// DefaultEngine returns the engine thresholds used when nothing overrides them.
func DefaultEngine() Engine {
	return Engine{
		TypeThreshold:                 0.8,
		CategoricalRatio:              0.5,
		MaxCategories:                 100,
		IdentifierUniqueRatio:         0.95,
		MinSegmentRows:                5,
		Aggregation:                   "mean",
		MinTrendBuckets:               4,
		NoiseFraction:                 0.5,
		SeasonalityThreshold:          0.3,
		ForecastPeriods:               7,
		ZScoreThreshold:               3.0,
		IQRMultiplier:                 1.5,
		MultivariatePercentile:        0.05,
		MinCorrelationSamples:         3,
		RecommendedCorrelationSamples: 10,
		MinAnomalyScore:               0.95,
		MinTrendConfidence:            0.5,
		SeverityHigh:                  0.9,
		SeverityMedium:                0.7,
	}
}

// Validate rejects values outside their valid range. Errors carry
// CONFIG_INVALID and wrap core.ErrInvalidConfig.
func (e Engine) Validate() error {
	checks := []struct {
		ok     bool
		field  string
		reason string
	}{
		{e.TypeThreshold > 0 && e.TypeThreshold <= 1, "type_threshold", "must be in (0,1]"},
		{e.CategoricalRatio > 0 && e.CategoricalRatio <= 1, "categorical_ratio", "must be in (0,1]"},
		{e.MaxCategories >= 1, "max_categories", "must be >= 1"},
		{e.IdentifierUniqueRatio > 0 && e.IdentifierUniqueRatio <= 1, "identifier_unique_ratio", "must be in (0,1]"},
		{e.MinSegmentRows >= 1, "min_segment_rows", "must be >= 1"},
		{e.Granularity == "" || e.Granularity == "daily" || e.Granularity == "weekly" || e.Granularity == "monthly",
			"granularity", "must be one of daily, weekly, monthly or empty"},
		{e.Aggregation == "mean" || e.Aggregation == "sum", "aggregation", "must be mean or sum"},
		{e.MinTrendBuckets >= 3, "min_trend_buckets", "must be >= 3"},
		{e.NoiseFraction >= 0, "noise_fraction", "must be >= 0"},
		{e.SeasonalityThreshold > 0 && e.SeasonalityThreshold < 1, "seasonality_threshold", "must be in (0,1)"},
		{e.ForecastPeriods >= 0, "forecast_periods", "must be >= 0"},
		{e.ZScoreThreshold > 0, "zscore_threshold", "must be > 0"},
		{e.IQRMultiplier > 0, "iqr_multiplier", "must be > 0"},
		{e.MultivariatePercentile > 0 && e.MultivariatePercentile < 1, "multivariate_percentile", "must be in (0,1)"},
		{e.MinCorrelationSamples >= 3, "min_correlation_samples", "must be >= 3"},
		{e.RecommendedCorrelationSamples >= e.MinCorrelationSamples, "recommended_correlation_samples", "must be >= min_correlation_samples"},
		{e.MinAnomalyScore >= 0 && e.MinAnomalyScore <= 1, "min_anomaly_score", "must be in [0,1]"},
		{e.MinTrendConfidence >= 0 && e.MinTrendConfidence <= 1, "min_trend_confidence", "must be in [0,1]"},
		{e.SeverityMedium >= 0 && e.SeverityMedium <= 1, "severity_medium", "must be in [0,1]"},
		{e.SeverityHigh >= e.SeverityMedium && e.SeverityHigh <= 1, "severity_high", "must be in [severity_medium,1]"},
		{e.MaxInsights >= 0, "max_insights", "must be >= 0"},
	}
	for _, c := range checks {
		if !c.ok {
			return errors.ConfigInvalid(c.field, fmt.Sprintf("%s %s", c.field, c.reason))
		}
	}
	return nil
}

// Load reads configuration from defaults, an optional YAML file and
// OLYNK_* environment variables (OLYNK_ENGINE_ZSCORE_THRESHOLD, ...).
// DATABASE_URL, PORT and GIN_MODE are honoured unprefixed as well.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OLYNK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "read config %s", cfgFile)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".olynk"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("olynk")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeConfigInvalid, err), "unmarshal config")
	}

	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	if err := c.Engine.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultEngine()
	v.SetDefault("engine.type_threshold", d.TypeThreshold)
	v.SetDefault("engine.categorical_ratio", d.CategoricalRatio)
	v.SetDefault("engine.max_categories", d.MaxCategories)
	v.SetDefault("engine.identifier_unique_ratio", d.IdentifierUniqueRatio)
	v.SetDefault("engine.segment_by", d.SegmentBy)
	v.SetDefault("engine.min_segment_rows", d.MinSegmentRows)
	v.SetDefault("engine.date_column", d.DateColumn)
	v.SetDefault("engine.granularity", d.Granularity)
	v.SetDefault("engine.aggregation", d.Aggregation)
	v.SetDefault("engine.min_trend_buckets", d.MinTrendBuckets)
	v.SetDefault("engine.noise_fraction", d.NoiseFraction)
	v.SetDefault("engine.seasonality_threshold", d.SeasonalityThreshold)
	v.SetDefault("engine.forecast_periods", d.ForecastPeriods)
	v.SetDefault("engine.zscore_threshold", d.ZScoreThreshold)
	v.SetDefault("engine.iqr_multiplier", d.IQRMultiplier)
	v.SetDefault("engine.multivariate_percentile", d.MultivariatePercentile)
	v.SetDefault("engine.min_correlation_samples", d.MinCorrelationSamples)
	v.SetDefault("engine.recommended_correlation_samples", d.RecommendedCorrelationSamples)
	v.SetDefault("engine.min_anomaly_score", d.MinAnomalyScore)
	v.SetDefault("engine.min_trend_confidence", d.MinTrendConfidence)
	v.SetDefault("engine.severity_high", d.SeverityHigh)
	v.SetDefault("engine.severity_medium", d.SeverityMedium)
	v.SetDefault("engine.max_insights", d.MaxInsights)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.max_upload_bytes", int64(32<<20))
	v.SetDefault("server.max_rows", 200000)
	v.SetDefault("server.max_stored_reports", 500)
	v.SetDefault("database.url", "")
	v.SetDefault("log_level", "INFO")
}

// Write encodes the configuration as YAML.
func Write(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return enc.Close()
}

// Save writes the configuration as YAML to path.
func Save(c *Config, path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
