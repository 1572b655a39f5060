package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLINIC_DATABASE_HOST.
const EnvPrefix = "CLINIC"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Messaging  MessagingConfig  `mapstructure:"messaging"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	Notify     NotifyConfig     `mapstructure:"notifications"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" split_words:"true"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" split_words:"true"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" split_words:"true"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" split_words:"true"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type JWTConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
	Issuer  string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled" split_words:"true"`
	MetricsPath       string `mapstructure:"metrics_path" split_words:"true"`
	// WorkerAddr is where the worker binary serves its metrics.
	WorkerAddr string `mapstructure:"worker_addr" split_words:"true"`
}

// SchedulingConfig tunes the availability engine.
type SchedulingConfig struct {
	SlotStepMinutes     int           `mapstructure:"slot_step_minutes" split_words:"true"`
	AppointmentLeadTime time.Duration `mapstructure:"appointment_lead_time" split_words:"true"`
	SearchHorizonDays   int           `mapstructure:"search_horizon_days" split_words:"true"`
	WindowCacheTTL      time.Duration `mapstructure:"window_cache_ttl" envconfig:"WINDOW_CACHE_TTL"`
	BookedLookaheadDays int           `mapstructure:"booked_lookahead_days" split_words:"true"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	GroupID string `mapstructure:"group_id" split_words:"true"`
}

// MessagingConfig selects the broker the outbox worker publishes to.
type MessagingConfig struct {
	Driver string      `mapstructure:"driver"`
	Topic  string      `mapstructure:"topic"`
	Redis  RedisConfig `mapstructure:"redis"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size" split_words:"true"`
	PollInterval    time.Duration `mapstructure:"poll_interval" split_words:"true"`
	RetryAttempts   int           `mapstructure:"retry_attempts" split_words:"true"`
	RetryDelay      time.Duration `mapstructure:"retry_delay" split_words:"true"`
	RetentionPeriod time.Duration `mapstructure:"retention_period" split_words:"true"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" split_words:"true"`
}

// NotifyConfig drives the worker's sweep of failed notification deliveries.
type NotifyConfig struct {
	RetryInterval  time.Duration `mapstructure:"retry_interval" split_words:"true"`
	RetryBatchSize int           `mapstructure:"retry_batch_size" split_words:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "clinic_scheduler")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("log.level", "info")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.worker_addr", ":9091")

	v.SetDefault("scheduling.slot_step_minutes", 30)
	v.SetDefault("scheduling.appointment_lead_time", 24*time.Hour)
	v.SetDefault("scheduling.search_horizon_days", 366)
	v.SetDefault("scheduling.window_cache_ttl", time.Minute)
	v.SetDefault("scheduling.booked_lookahead_days", 56)

	v.SetDefault("messaging.driver", "redis")
	v.SetDefault("messaging.topic", "clinic.schedule")
	v.SetDefault("messaging.redis.url", "redis://localhost:6379/0")
	v.SetDefault("messaging.redis.max_retries", 3)
	v.SetDefault("messaging.redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("messaging.redis.pool_size", 10)
	v.SetDefault("messaging.kafka.brokers", "localhost:9092")
	v.SetDefault("messaging.kafka.group_id", "clinic-scheduler")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", time.Second)
	v.SetDefault("outbox.retention_period", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)

	v.SetDefault("notifications.retry_interval", 30*time.Second)
	v.SetDefault("notifications.retry_batch_size", 50)
}

// Load reads config.yml from the usual locations. A missing file is not an
// error; defaults and environment overrides still apply.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the config file at path, or searches for config.yml when path
// is empty. Precedence: environment, file, defaults.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Scheduling.SlotStepMinutes <= 0 || c.Scheduling.SlotStepMinutes > 24*60 {
		return fmt.Errorf("invalid scheduling.slot_step_minutes: %d", c.Scheduling.SlotStepMinutes)
	}
	if c.Scheduling.AppointmentLeadTime < 0 {
		return fmt.Errorf("invalid scheduling.appointment_lead_time: %s", c.Scheduling.AppointmentLeadTime)
	}
	if c.Scheduling.SearchHorizonDays <= 0 {
		return fmt.Errorf("invalid scheduling.search_horizon_days: %d", c.Scheduling.SearchHorizonDays)
	}
	if c.Notify.RetryInterval <= 0 {
		return fmt.Errorf("invalid notifications.retry_interval: %s", c.Notify.RetryInterval)
	}
	switch strings.ToLower(c.Messaging.Driver) {
	case "redis", "kafka", "none":
	default:
		return fmt.Errorf("unsupported messaging.driver: %q", c.Messaging.Driver)
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required when jwt is enabled")
	}
	return nil
}
