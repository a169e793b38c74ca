package config

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Auth      AuthConfig        `mapstructure:"auth"`
	CORS      CORSConfig        `mapstructure:"cors"`
	RateLimit RateLimitConfig   `mapstructure:"rate_limit"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Supabase  SupabaseConfig    `mapstructure:"supabase"`
	Queue     QueueConfig       `mapstructure:"queue"`
	SMS       SMSConfig         `mapstructure:"sms"`
	OTP       OTPConfig         `mapstructure:"otp"`
	Settings  SettingsConfig    `mapstructure:"settings"`

	// Templates overrides built-in template bodies by id.
	Templates map[string]string `mapstructure:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds per-IP API rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
// Both fields empty means settings and delivery logs stay in memory.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// Enabled reports whether a Supabase project is configured.
func (s SupabaseConfig) Enabled() bool {
	return s.URL != "" && s.ServiceKey != ""
}

// QueueConfig holds async queue settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetry    int `mapstructure:"max_retry"`
}

// SMSConfig holds provider driver settings.
type SMSConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec"`

	// Settings seeds the settings store on first boot, using the same
	// flat keys the settings API accepts (e.g. "twilio.enabled").
	Settings map[string]string `mapstructure:"-"`
}

// Timeout returns the provider HTTP timeout.
func (s SMSConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// OTPConfig holds one-time passcode settings (durations as seconds for YAML/env compat).
type OTPConfig struct {
	CodeLength       int      `mapstructure:"code_length"`
	TTLSec           int      `mapstructure:"ttl_sec"`
	MaxAttempts      int      `mapstructure:"max_attempts"`
	Template         string   `mapstructure:"template"`
	MaxIssuesPerHour int      `mapstructure:"max_issues_per_hour"`
	RetentionSec     int      `mapstructure:"retention_sec"`
	RequireAll       bool     `mapstructure:"require_all"`
	RequiredSubjects []string `mapstructure:"required_subjects"`
}

// SettingsConfig holds settings reload settings.
type SettingsConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the SMSNOTIFY_ prefix and underscore separators.
// Example: SMSNOTIFY_SERVER_PORT overrides server.port in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	// Environment variable settings
	v.SetEnvPrefix("SMSNOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional; env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Handle comma-separated lists from env vars
	if len(cfg.Auth.APIKeys) == 0 {
		cfg.Auth.APIKeys = splitList(v.GetString("auth.api_keys"))
	}
	if len(cfg.OTP.RequiredSubjects) == 0 {
		cfg.OTP.RequiredSubjects = splitList(v.GetString("otp.required_subjects"))
	}

	// Dotted keys like "twilio.enabled" are split into nested maps by viper.
	cfg.SMS.Settings = flatten("", v.GetStringMap("sms.settings"))
	cfg.Templates = flatten("", v.GetStringMap("templates"))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("sms.timeout_sec", 10)
	v.SetDefault("otp.code_length", 6)
	v.SetDefault("otp.ttl_sec", 600) // 10 minutes
	v.SetDefault("otp.max_attempts", 3)
	v.SetDefault("otp.template", "smsnotify.otp_code")
	v.SetDefault("otp.max_issues_per_hour", 5)
	v.SetDefault("otp.retention_sec", 3600)
	v.SetDefault("otp.require_all", false)
	v.SetDefault("settings.poll_interval_sec", 30)
}

func flatten(prefix string, in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, val := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			maps.Copy(out, flatten(key, nested))
			continue
		}
		out[key] = cast.ToString(val)
	}
	return out
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
