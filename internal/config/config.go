package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Shoplite API service.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	Assistant AssistantConfig
	Telemetry TelemetryConfig
}

type DatabaseConfig struct {
	// URL is the Postgres connection string. When empty the server falls
	// back to the in-memory store and seeds it with demo fixtures.
	URL            string
	MaxConnections int
}

type AssistantConfig struct {
	// PersonaPath and KnowledgePath point at the static configuration
	// documents. Both must load and validate at startup.
	PersonaPath   string
	KnowledgePath string
	// GenerateURL is the text-generation backend endpoint.
	GenerateURL     string
	GenerateTimeout time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("SHOPLITE_PORT", 8080),
		Version: envStr("SHOPLITE_VERSION", "1.2.0"),
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Assistant: AssistantConfig{
			PersonaPath:     envStr("SHOPLITE_PERSONA_PATH", "configs/persona.yaml"),
			KnowledgePath:   envStr("SHOPLITE_KNOWLEDGE_PATH", "configs/knowledge.json"),
			GenerateURL:     envStr("LLM_GENERATE_URL", "http://localhost:11434/api/generate"),
			GenerateTimeout: envDuration("LLM_GENERATE_TIMEOUT", 30*time.Second),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "shoplite-api"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
