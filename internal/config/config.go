// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Mattermost   MattermostConfig   `mapstructure:"mattermost"`
	Voting       VotingConfig       `mapstructure:"voting"`
	Submission   SubmissionConfig   `mapstructure:"submission"`
	Authority    AuthorityConfig    `mapstructure:"authority"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Environment     string `mapstructure:"environment"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// DatabaseConfig selects the issue store and holds connection settings for it and for Redis.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Seed     bool           `mapstructure:"seed"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// SQLiteConfig contains the SQLite database file path.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains Redis cache connection and pool settings.
// An empty host disables Redis; session state and rate limits then stay in memory.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Enabled reports whether a Redis host is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns the host:port address.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MattermostConfig contains Mattermost webhook notification settings.
type MattermostConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// VotingConfig controls the per-session vote toggle.
type VotingConfig struct {
	// ReverseOnSwitch undoes the previous vote when a user switches direction (delta of two).
	ReverseOnSwitch bool `mapstructure:"reverse_on_switch"`
	SessionTTL      int  `mapstructure:"session_ttl"` // seconds
}

// SessionTTLDuration returns the session TTL as a duration.
func (c *VotingConfig) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// SubmissionConfig contains issue submission limits.
type SubmissionConfig struct {
	DailyLimit     int `mapstructure:"daily_limit"` // 0 disables rate limiting
	Timeout        int `mapstructure:"timeout"`     // seconds
	MaxPhotos      int `mapstructure:"max_photos"`
	MaxPhotoSizeMB int `mapstructure:"max_photo_size_mb"`
}

// TimeoutDuration returns the submission timeout as a duration.
func (c *SubmissionConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// MaxPhotoBytes returns the per-photo size limit in bytes.
func (c *SubmissionConfig) MaxPhotoBytes() int64 {
	return int64(c.MaxPhotoSizeMB) << 20
}

// AuthorityConfig lists the departments issues can be assigned to.
type AuthorityConfig struct {
	Departments []string `mapstructure:"departments"`
}

// GamificationConfig holds the achievement catalog.
type GamificationConfig struct {
	Achievements []AchievementConfig `mapstructure:"achievements"`
}

// AchievementConfig defines one achievement and the criterion that unlocks it.
type AchievementConfig struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Icon        string `mapstructure:"icon"`
	Metric      string `mapstructure:"metric"`   // issues_reported, issues_resolved, level, rank
	Operator    string `mapstructure:"operator"` // ">=" or "top"
	Value       int    `mapstructure:"value"`
	Progress    bool   `mapstructure:"progress"` // track progress toward Value
}

// SchedulerConfig contains the pending-issue digest scheduler settings.
type SchedulerConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Time          string `mapstructure:"time"` // HH:MM
	Timezone      string `mapstructure:"timezone"`
	SkipWeekends  bool   `mapstructure:"skip_weekends"`
	MinPendingAge int    `mapstructure:"min_pending_age"` // hours
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DefaultDepartments are used when no departments are configured.
var DefaultDepartments = []string{"Roads Dept.", "Electric Dept.", "Waste Mgmt.", "Water Dept."}

// DefaultAchievements is the catalog used when none is configured.
var DefaultAchievements = []AchievementConfig{
	{ID: "1", Name: "First Report", Description: "Report your first issue", Icon: "target", Metric: "issues_reported", Operator: ">=", Value: 1},
	{ID: "2", Name: "Community Hero", Description: "Report 50 issues", Icon: "award", Metric: "issues_reported", Operator: ">=", Value: 50, Progress: true},
	{ID: "3", Name: "Problem Solver", Description: "Get 25 issues resolved", Icon: "star", Metric: "issues_resolved", Operator: ">=", Value: 25, Progress: true},
	{ID: "4", Name: "Top Contributor", Description: "Reach top 3 on leaderboard", Icon: "trophy", Metric: "rank", Operator: "top", Value: 3},
	{ID: "5", Name: "Level Master", Description: "Reach level 10", Icon: "medal", Metric: "level", Operator: ">=", Value: 10, Progress: true},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.sqlite.path", "civic.db")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)
	v.SetDefault("database.seed", true)

	v.SetDefault("voting.reverse_on_switch", false)
	v.SetDefault("voting.session_ttl", 86400)

	v.SetDefault("submission.daily_limit", 10)
	v.SetDefault("submission.timeout", 30)
	v.SetDefault("submission.max_photos", 5)
	v.SetDefault("submission.max_photo_size_mb", 10)

	v.SetDefault("scheduler.time", "09:00")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.skip_weekends", true)
	v.SetDefault("scheduler.min_pending_age", 48)

	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error when configPath is empty; defaults and environment apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/civic-dashboard/")
	}

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")
	_ = v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Storage configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.seed", "DATABASE_SEED")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Mattermost configuration
	_ = v.BindEnv("mattermost.webhook_url", "MATTERMOST_WEBHOOK_URL")
	_ = v.BindEnv("mattermost.channel", "MATTERMOST_CHANNEL")
	_ = v.BindEnv("mattermost.enabled", "MATTERMOST_ENABLED")

	// Workflow configuration
	_ = v.BindEnv("voting.reverse_on_switch", "VOTING_REVERSE_ON_SWITCH")
	_ = v.BindEnv("voting.session_ttl", "VOTING_SESSION_TTL")
	_ = v.BindEnv("submission.daily_limit", "SUBMISSION_DAILY_LIMIT")
	_ = v.BindEnv("submission.timeout", "SUBMISSION_TIMEOUT")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")
	_ = v.BindEnv("scheduler.skip_weekends", "SCHEDULER_SKIP_WEEKENDS")
	_ = v.BindEnv("scheduler.min_pending_age", "SCHEDULER_MIN_PENDING_AGE")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) applyFallbacks() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if len(c.Authority.Departments) == 0 {
		c.Authority.Departments = append([]string(nil), DefaultDepartments...)
	}
	if len(c.Gamification.Achievements) == 0 {
		c.Gamification.Achievements = append([]AchievementConfig(nil), DefaultAchievements...)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("database.driver must be one of memory, sqlite, postgres (got %q)", c.Database.Driver)
	}

	if c.Mattermost.Enabled && c.Mattermost.WebhookURL == "" {
		return fmt.Errorf("mattermost.webhook_url is required when mattermost is enabled")
	}
	if c.Submission.DailyLimit < 0 {
		return fmt.Errorf("submission.daily_limit must not be negative")
	}
	if c.Submission.MaxPhotos < 0 || c.Submission.MaxPhotoSizeMB < 0 {
		return fmt.Errorf("submission photo limits must not be negative")
	}
	if c.Voting.SessionTTL < 0 {
		return fmt.Errorf("voting.session_ttl must not be negative")
	}

	for _, dept := range c.Authority.Departments {
		if strings.TrimSpace(dept) == "" {
			return fmt.Errorf("authority.departments must not contain empty names")
		}
	}

	seen := make(map[string]bool, len(c.Gamification.Achievements))
	for _, a := range c.Gamification.Achievements {
		if a.ID == "" || a.Name == "" {
			return fmt.Errorf("achievement id and name are required")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
		switch a.Operator {
		case ">=", "top":
		default:
			return fmt.Errorf("achievement %q: unsupported operator %q", a.ID, a.Operator)
		}
		if a.Value <= 0 {
			return fmt.Errorf("achievement %q: value must be positive", a.ID)
		}
	}

	if c.Scheduler.Enabled {
		if _, err := time.Parse("15:04", c.Scheduler.Time); err != nil {
			return fmt.Errorf("scheduler.time must be HH:MM: %w", err)
		}
		if _, err := c.Scheduler.GetLocation(); err != nil {
			return fmt.Errorf("scheduler.timezone is invalid: %w", err)
		}
	}

	return nil
}

// IsDepartment reports whether name is one of the configured departments.
func (c *AuthorityConfig) IsDepartment(name string) bool {
	for _, d := range c.Departments {
		if d == name {
			return true
		}
	}
	return false
}
