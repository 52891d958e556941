package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Proton-105/lovemenu-bot/pkg/redis"
)

// Config holds runtime configuration for the love menu bot.
type Config struct {
	AppEnv    string          `mapstructure:"app_env"`
	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     redis.Config    `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Session   SessionConfig   `mapstructure:"session"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// Couple links two users who receive each other's order notifications.
type Couple struct {
	A int64 `mapstructure:"a" validate:"required"`
	B int64 `mapstructure:"b" validate:"required"`
}

type BotConfig struct {
	Token      string        `mapstructure:"token" validate:"required"`
	Mode       string        `mapstructure:"mode" validate:"omitempty,oneof=polling webhook"`
	Timeout    time.Duration `mapstructure:"timeout"`
	WebhookURL string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
	Listen     string        `mapstructure:"listen"`
	// AdminIDs is a comma separated list of telegram user ids.
	AdminIDs                string   `mapstructure:"admin_ids"`
	Couples                 []Couple `mapstructure:"couples" validate:"dive"`
	ConfirmationAnimationID string   `mapstructure:"confirmation_animation_id"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required"`
	SSLMode         string        `mapstructure:"sslmode"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	// File enables a rotated log file next to stdout.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type SentryConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	DSN        string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// RateLimitRule is "limit requests per window", window in time.ParseDuration syntax.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Whitelist []int64       `mapstructure:"whitelist"`
	Global    RateLimitRule `mapstructure:"global"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Commands  struct {
		Checkout     RateLimitRule `mapstructure:"checkout"`
		SpecialOrder RateLimitRule `mapstructure:"special_order"`
	} `mapstructure:"commands"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type JobsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Concurrency int    `mapstructure:"concurrency"`
	BackupCron  string `mapstructure:"backup_cron"`
	BackupDir   string `mapstructure:"backup_dir"`
}

// GetDBConnectionString returns PostgreSQL DSN based on config values.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Admins returns the parsed admin allowlist. Invalid entries are skipped; when
// none are configured the legacy ADMIN_USER_ID variable is used.
func (c *Config) Admins() []int64 {
	ids := parseIDs(c.Bot.AdminIDs)
	if len(ids) == 0 {
		ids = parseIDs(os.Getenv("ADMIN_USER_ID"))
	}
	return ids
}

// IsAdmin reports whether userID is on the admin allowlist.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins() {
		if id == userID {
			return true
		}
	}
	return false
}

// PartnerOf returns the other member of the couple userID belongs to.
func (c *Config) PartnerOf(userID int64) (int64, bool) {
	for _, couple := range c.Bot.Couples {
		switch userID {
		case couple.A:
			return couple.B, true
		case couple.B:
			return couple.A, true
		}
	}
	return 0, false
}

func parseIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *Config) applyDefaults() {
	if c.Bot.Mode == "" {
		c.Bot.Mode = "polling"
	}
	if c.Bot.Timeout <= 0 {
		c.Bot.Timeout = 10 * time.Second
	}
	if c.Bot.Listen == "" {
		c.Bot.Listen = ":8443"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "migrations"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "json"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = time.Hour
	}
	if c.Session.CleanupInterval <= 0 {
		c.Session.CleanupInterval = 10 * time.Minute
	}
	if c.Jobs.Concurrency <= 0 {
		c.Jobs.Concurrency = 5
	}
	if c.Jobs.BackupCron == "" {
		c.Jobs.BackupCron = "0 3 * * *"
	}
	if c.Jobs.BackupDir == "" {
		c.Jobs.BackupDir = "backups"
	}
}
