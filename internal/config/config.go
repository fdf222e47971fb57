package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Match
	MatchRole           string
	SnapshotEveryFrames int
	ViewportWidth       int
	ViewportHeight      int

	// Peer link
	PeerTransport       string
	PeerAddr            string
	PeerURL             string
	PeerSecret          string
	PeerTokenTTLMinutes int

	// Security
	AdminTokenHash string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Match
		MatchRole:           getEnv("MATCH_ROLE", "local"),
		SnapshotEveryFrames: getEnvInt("SNAPSHOT_EVERY_FRAMES", 6),
		ViewportWidth:       getEnvInt("VIEWPORT_WIDTH", 1280),
		ViewportHeight:      getEnvInt("VIEWPORT_HEIGHT", 720),

		// Peer link
		PeerTransport:       getEnv("PEER_TRANSPORT", "websocket"),
		PeerAddr:            getEnv("PEER_ADDR", ":7777"),
		PeerURL:             getEnv("PEER_URL", "ws://localhost:8080/api/v1/peer/ws"),
		PeerSecret:          getEnv("PEER_SECRET", "change-me-in-production"),
		PeerTokenTTLMinutes: getEnvInt("PEER_TOKEN_TTL_MINUTES", 30),

		// Security
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
