// Package config loads Nexus configuration from the environment and from
// the optional weight-profile file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Provider identifies an embedding/LLM backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection (the metadata catalog graph store)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	OllamaHost     string
	OpenAIAPIKey   string

	// LLM answer synthesis (optional; empty model disables synthesis)
	LLMProvider Provider
	LLMModel    string

	// Weight profiles
	ProfilesFile string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables with defaults
// matching the local development stack.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("NEXUS_SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("NEXUS_SURREALDB_NAMESPACE", "nexus"),
		SurrealDBDatabase:  getEnv("NEXUS_SURREALDB_DATABASE", "catalog"),
		SurrealDBUser:      getEnv("NEXUS_SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("NEXUS_SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("NEXUS_SURREALDB_AUTH_LEVEL", "root"),

		EmbedProvider:  Provider(getEnv("NEXUS_EMBED_PROVIDER", string(ProviderOllama))),
		EmbedModel:     getEnv("NEXUS_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("NEXUS_EMBED_DIMENSION", 384),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),

		LLMProvider: Provider(getEnv("NEXUS_LLM_PROVIDER", string(ProviderOllama))),
		LLMModel:    getEnv("NEXUS_LLM_MODEL", ""),

		ProfilesFile: getEnv("NEXUS_PROFILES_FILE", ""),

		LogFile:  getEnv("NEXUS_LOG_FILE", "/tmp/nexus.log"),
		LogLevel: parseLogLevel(getEnv("NEXUS_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
