package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	APIAddr     string
	LogLevel    slog.Level

	BotToken       string
	GatewayURL     string
	PlatformAPIURL string

	ReactionEmoji string
	AdminRoleID   int64

	RepeatAvoidance       bool
	ContentMatchThreshold int
	AuthorMatchThreshold  int
	RecurringPosts        string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       envOrDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		APIAddr:        envOrDefault("API_ADDR", ":8080"),
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL")),
		BotToken:       os.Getenv("BOT_TOKEN"),
		GatewayURL:     envOrDefault("GATEWAY_URL", "wss://gateway.discord.gg/?v=10&encoding=json"),
		PlatformAPIURL: envOrDefault("PLATFORM_API_URL", "https://discord.com/api/v10"),
		ReactionEmoji:  envOrDefault("REACTION_EMOJI", "\U0001F4CC"),
		AdminRoleID:    parseInt64(os.Getenv("ADMIN_ROLE")),

		RepeatAvoidance:       parseBool(envOrDefault("REPEAT_AVOIDANCE", "true")),
		ContentMatchThreshold: parseIntOrDefault(os.Getenv("CONTENT_MATCH_THRESHOLD"), 50),
		AuthorMatchThreshold:  parseIntOrDefault(os.Getenv("AUTHOR_MATCH_THRESHOLD"), 60),
		RecurringPosts:        os.Getenv("RECURRING_POSTS"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}

func parseIntOrDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > 100 {
		return fallback
	}
	return v
}
