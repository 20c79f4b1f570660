package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/utils"
)

// Config is assembled once at startup and handed to constructors. Business
// logic never reads the environment directly.
type Config struct {
	Port        string   `yaml:"port"`
	LogMode     string   `yaml:"log_mode"`
	CORSOrigins []string `yaml:"cors_origins"`

	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Tutor      TutorConfig      `yaml:"tutor"`
	Otel       OtelConfig       `yaml:"otel"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Name)
}

type RedisConfig struct {
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type OpenRouterConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
}

// TutorConfig bounds everything the orchestrator feeds the model.
type TutorConfig struct {
	HistoryWindow       int `yaml:"history_window"`
	ExcerptBudget       int `yaml:"excerpt_budget"`
	PageWindow          int `yaml:"page_window"`
	PageExcerptBudget   int `yaml:"page_excerpt_budget"`
	WeakTopicLimit      int `yaml:"weak_topic_limit"`
	SessionHistoryLimit int `yaml:"session_history_limit"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Environment string  `yaml:"environment"`
}

// Load builds the config from defaults, an optional YAML file pointed at by
// EDUVOICE_CONFIG, and finally environment variable overrides (env wins).
func Load(log *logger.Logger) (*Config, error) {
	cfg := &Config{
		Port:        "5000",
		LogMode:     "development",
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		Postgres: PostgresConfig{
			Host: "localhost",
			Port: "5432",
			User: "postgres",
			Name: "eduvoice",
		},
		Redis: RedisConfig{TTLSeconds: 3600},
		OpenRouter: OpenRouterConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "deepseek/deepseek-v3.1-terminus",
			MaxTokens:      350,
			Temperature:    0.75,
			TimeoutSeconds: 30,
			MaxRetries:     2,
		},
		Tutor: TutorConfig{
			HistoryWindow:       10,
			ExcerptBudget:       1500,
			PageWindow:          4000,
			PageExcerptBudget:   2000,
			WeakTopicLimit:      5,
			SessionHistoryLimit: 20,
		},
		Otel: OtelConfig{SampleRatio: 0.1},
	}

	if path := strings.TrimSpace(os.Getenv("EDUVOICE_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.LogMode = utils.GetEnv("LOG_MODE", cfg.LogMode, log)
	if origins := utils.GetEnv("CORS_ORIGINS", "", log); origins != "" {
		cfg.CORSOrigins = splitAndTrim(origins)
	}

	cfg.Postgres.Host = utils.GetEnv("POSTGRES_HOST", cfg.Postgres.Host, log)
	cfg.Postgres.Port = utils.GetEnv("POSTGRES_PORT", cfg.Postgres.Port, log)
	cfg.Postgres.User = utils.GetEnv("POSTGRES_USER", cfg.Postgres.User, log)
	cfg.Postgres.Password = utils.GetEnv("POSTGRES_PASSWORD", cfg.Postgres.Password, log)
	cfg.Postgres.Name = utils.GetEnv("POSTGRES_NAME", cfg.Postgres.Name, log)

	cfg.Redis.Addr = utils.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.TTLSeconds = utils.GetEnvAsInt("REDIS_TTL_SECONDS", cfg.Redis.TTLSeconds, log)

	cfg.OpenRouter.APIKey = utils.GetEnv("OPENROUTER_API_KEY", cfg.OpenRouter.APIKey, log)
	cfg.OpenRouter.BaseURL = utils.GetEnv("OPENROUTER_BASE_URL", cfg.OpenRouter.BaseURL, log)
	cfg.OpenRouter.Model = utils.GetEnv("OPENROUTER_MODEL", cfg.OpenRouter.Model, log)
	cfg.OpenRouter.MaxTokens = utils.GetEnvAsInt("OPENROUTER_MAX_TOKENS", cfg.OpenRouter.MaxTokens, log)
	cfg.OpenRouter.Temperature = utils.GetEnvAsFloat("OPENROUTER_TEMPERATURE", cfg.OpenRouter.Temperature, log)
	cfg.OpenRouter.TimeoutSeconds = utils.GetEnvAsInt("OPENROUTER_TIMEOUT_SECONDS", cfg.OpenRouter.TimeoutSeconds, log)
	cfg.OpenRouter.MaxRetries = utils.GetEnvAsInt("OPENROUTER_MAX_RETRIES", cfg.OpenRouter.MaxRetries, log)

	cfg.Tutor.HistoryWindow = utils.GetEnvAsInt("TUTOR_HISTORY_WINDOW", cfg.Tutor.HistoryWindow, log)
	cfg.Tutor.ExcerptBudget = utils.GetEnvAsInt("TUTOR_EXCERPT_BUDGET", cfg.Tutor.ExcerptBudget, log)
	cfg.Tutor.PageWindow = utils.GetEnvAsInt("TUTOR_PAGE_WINDOW", cfg.Tutor.PageWindow, log)
	cfg.Tutor.PageExcerptBudget = utils.GetEnvAsInt("TUTOR_PAGE_EXCERPT_BUDGET", cfg.Tutor.PageExcerptBudget, log)
	cfg.Tutor.WeakTopicLimit = utils.GetEnvAsInt("TUTOR_WEAK_TOPIC_LIMIT", cfg.Tutor.WeakTopicLimit, log)
	cfg.Tutor.SessionHistoryLimit = utils.GetEnvAsInt("TUTOR_SESSION_HISTORY_LIMIT", cfg.Tutor.SessionHistoryLimit, log)

	cfg.Otel.Enabled = utils.GetEnvAsBool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.Endpoint = utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Insecure = utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)
	cfg.Otel.SampleRatio = utils.GetEnvAsFloat("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio, log)
	cfg.Otel.Environment = utils.GetEnv("OTEL_ENVIRONMENT", cfg.Otel.Environment, log)

	return cfg, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
