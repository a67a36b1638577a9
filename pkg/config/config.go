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
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
		Dir    string `yaml:"dir"`    // empty means stdout only
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Watchlist struct {
		Symbols   []string      `yaml:"symbols"`
		ScanLimit int           `yaml:"scan_limit"`
		Workers   int           `yaml:"workers"`
		Cooldown  time.Duration `yaml:"cooldown"`
	} `yaml:"watchlist"`
	Notify struct {
		Enabled    bool   `yaml:"enabled"`
		Backend    string `yaml:"backend"` // webhook or kafka
		Mode       string `yaml:"mode"`    // batched or per_unit
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"notify"`
	Review struct {
		Enabled      bool     `yaml:"enabled"`
		IndexSymbols []string `yaml:"index_symbols"`
	} `yaml:"review"`
	Schedule struct {
		Cron string `yaml:"cron"` // serve mode; robfig/cron spec
	} `yaml:"schedule"`
	LLM struct {
		APIURL      string        `yaml:"api_url"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"max_attempts"`
		MaxRPS      float64       `yaml:"max_rps"`
	} `yaml:"llm"`
	MarketData struct {
		APIURL   string        `yaml:"api_url"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"marketdata"`
	Search struct {
		APIURL string `yaml:"api_url"`
		APIKey string `yaml:"api_key"`
		Limit  int    `yaml:"limit"`
	} `yaml:"search"`
	Docs struct {
		APIURL    string `yaml:"api_url"`
		AppID     string `yaml:"app_id"`
		AppSecret string `yaml:"app_secret"`
		Folder    string `yaml:"folder"`
	} `yaml:"docs"`
	Quotes struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"quotes"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		NotifyTopic   string   `yaml:"notify_topic"`
		RequestsTopic string   `yaml:"requests_topic"`
		LogTopic      string   `yaml:"log_topic"`
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
	Cache struct {
		MemorySize int `yaml:"memory_size"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Defaults applied by Load when the YAML leaves a field unset. The worker
// bound is deliberately low: per-unit analysis calls rate-limited services.
const (
	DefaultWorkers   = 2
	DefaultScanLimit = 3
	DefaultCooldown  = 2 * time.Second
)

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Watchlist.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		c.Notify.WebhookURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Watchlist.Workers = n
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Watchlist.Workers <= 0 {
		c.Watchlist.Workers = DefaultWorkers
	}
	if c.Watchlist.ScanLimit <= 0 {
		c.Watchlist.ScanLimit = DefaultScanLimit
	}
	if c.Watchlist.Cooldown <= 0 {
		c.Watchlist.Cooldown = DefaultCooldown
	}
	if c.Notify.Backend == "" {
		c.Notify.Backend = "webhook"
	}
	if c.Notify.Mode == "" {
		c.Notify.Mode = "batched"
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 5
	}
	if c.LLM.MaxAttempts <= 0 {
		c.LLM.MaxAttempts = 3
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Notify.Backend != "webhook" && c.Notify.Backend != "kafka" {
		return fmt.Errorf("notify.backend must be 'webhook' or 'kafka', got '%s'", c.Notify.Backend)
	}
	if c.Notify.Mode != "batched" && c.Notify.Mode != "per_unit" {
		return fmt.Errorf("notify.mode must be 'batched' or 'per_unit', got '%s'", c.Notify.Mode)
	}
	if c.Notify.Enabled && c.Notify.Backend == "webhook" && c.Notify.WebhookURL == "" {
		return fmt.Errorf("notify.webhook_url is required for the webhook backend")
	}
	if c.Notify.Enabled && c.Notify.Backend == "kafka" {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers are required for the kafka notify backend")
		}
		if c.Kafka.NotifyTopic == "" {
			return fmt.Errorf("kafka.notify_topic is required for the kafka notify backend")
		}
	}
	if c.MarketData.APIURL == "" {
		return fmt.Errorf("marketdata.api_url is required")
	}
	if c.LLM.APIURL == "" {
		return fmt.Errorf("llm.api_url is required")
	}
	return nil
}
