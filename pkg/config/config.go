package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		TimeFormat string `yaml:"time_format"`
		Collector  struct {
			Enabled       bool          `yaml:"enabled"`
			FlushInterval time.Duration `yaml:"flush_interval"`
			MaxBatchSize  int           `yaml:"max_batch_size"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		ReadingsTopic string   `yaml:"readings_topic"`
		AlertsTopic   string   `yaml:"alerts_topic"`
		LogsTopic     string   `yaml:"logs_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Analytics struct {
		DetectThreshold float64       `yaml:"detect_threshold"`
		HighThreshold   float64       `yaml:"high_threshold"`
		HistoryMonths   int           `yaml:"history_months"`
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		Timeout         time.Duration `yaml:"timeout"`
		RefreshCron     string        `yaml:"refresh_cron"`
		RateLimit       struct {
			Insights   int `yaml:"insights"`   // requests/sec
			Analyze    int `yaml:"analyze"`    // requests/sec
			Recommends int `yaml:"recommends"` // requests/sec
		} `yaml:"rate_limit"`
	} `yaml:"analytics"`
	TextGen struct {
		Enabled     bool          `yaml:"enabled"`
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float64       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"textgen"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.ApplyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if v := get("ECOTRACK_ENV"); v != "" {
		c.Environment = v
	}
	if v := get("OPENAI_API_KEY"); v != "" {
		c.TextGen.APIKey = v
	}
	// TEXTGEN_API_KEY wins over the provider-specific name.
	if v := get("TEXTGEN_API_KEY"); v != "" {
		c.TextGen.APIKey = v
	}
	if v := get("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := get("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := get("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// ApplyDefaults fills zero values with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Kafka.ReadingsTopic == "" {
		c.Kafka.ReadingsTopic = "emissions.readings"
	}
	if c.Kafka.AlertsTopic == "" {
		c.Kafka.AlertsTopic = "emissions.anomalies"
	}
	if c.Kafka.LogsTopic == "" {
		c.Kafka.LogsTopic = "ecotrack.logs"
	}
	if c.Kafka.Consumer.GroupID == "" {
		c.Kafka.Consumer.GroupID = "ecotrack-readings"
	}

	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "ecotrack"
	}

	if c.Analytics.DetectThreshold == 0 {
		c.Analytics.DetectThreshold = 2
	}
	if c.Analytics.HighThreshold == 0 {
		c.Analytics.HighThreshold = 3
	}
	if c.Analytics.HistoryMonths == 0 {
		c.Analytics.HistoryMonths = 24
	}
	if c.Analytics.CacheTTL == 0 {
		c.Analytics.CacheTTL = 10 * time.Minute
	}
	if c.Analytics.Timeout == 0 {
		c.Analytics.Timeout = 10 * time.Second
	}
	if c.Analytics.RefreshCron == "" {
		c.Analytics.RefreshCron = "@every 15m"
	}

	if c.TextGen.BaseURL == "" {
		c.TextGen.BaseURL = "https://api.openai.com/v1"
	}
	if c.TextGen.Model == "" {
		c.TextGen.Model = "gpt-3.5-turbo"
	}
	if c.TextGen.MaxTokens == 0 {
		c.TextGen.MaxTokens = 1000
	}
	if c.TextGen.Temperature == 0 {
		c.TextGen.Temperature = 0.7
	}
	if c.TextGen.Timeout == 0 {
		c.TextGen.Timeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Analytics.DetectThreshold <= 0 {
		return fmt.Errorf("analytics.detect_threshold must be positive")
	}
	if c.Analytics.HighThreshold < c.Analytics.DetectThreshold {
		return fmt.Errorf("analytics.high_threshold (%v) must be >= detect_threshold (%v)",
			c.Analytics.HighThreshold, c.Analytics.DetectThreshold)
	}
	if c.Analytics.HistoryMonths < 1 {
		return fmt.Errorf("analytics.history_months must be >= 1")
	}
	if c.TextGen.Enabled && c.TextGen.APIKey == "" {
		return fmt.Errorf("textgen.api_key is required when textgen is enabled")
	}
	return nil
}
