// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Chat      ChatConfig      `mapstructure:"chat"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // seconds
}

// ProvidersConfig holds settings for every external data provider. A missing
// credential never fails startup; it only forces that category into fallback
// mode.
type ProvidersConfig struct {
	Amadeus     AmadeusConfig     `mapstructure:"amadeus"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	OpenTripMap OpenTripMapConfig `mapstructure:"opentripmap"`
	Climatiq    ClimatiqConfig    `mapstructure:"climatiq"`
	Timeout     int               `mapstructure:"timeout"` // milliseconds, per provider call
}

func (p ProvidersConfig) CallTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.Timeout) * time.Millisecond
}

type AmadeusConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
}

type OpenWeatherConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenTripMapConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type ClimatiqConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// LLMConfig holds settings for the itinerary generator client. The endpoint is
// OpenAI-compatible; BaseURL overrides the default for self-hosted gateways.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

func (l LLMConfig) CallTimeout() time.Duration {
	if l.Timeout <= 0 {
		return 45 * time.Second
	}
	return time.Duration(l.Timeout) * time.Millisecond
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ChatConfig holds conversation-level settings.
type ChatConfig struct {
	HistoryTTL     int `mapstructure:"history_ttl"`      // seconds a conversation context is kept
	MaxHistoryLen  int `mapstructure:"max_history_len"`  // turns kept per conversation
	PromotionLimit int `mapstructure:"promotion_limit"`  // frequency at which trip preferences become long-term
}

func (c ChatConfig) HistoryExpiry() time.Duration {
	if c.HistoryTTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.HistoryTTL) * time.Second
}
