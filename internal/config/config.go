package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults documented in the install notes; flags may override them.
const (
	DefaultPort    = 8888
	DefaultLogPath = "/tmp/auth_bridge.log"
)

type Config struct {
	Port         int
	LogPath      string
	LogLevel     string
	DBPath       string
	Bottle       string
	ResponseType string
}

// Load reads configuration from a .env file (current or executable
// directory) and the environment.
func Load() (*Config, error) {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			break
		}
	}

	port := DefaultPort
	if s := os.Getenv("SV2_BRIDGE_PORT"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n < 65536 {
			port = n
		}
	}

	cfg := &Config{
		Port:         port,
		LogPath:      getEnvWithDefault("SV2_BRIDGE_LOG", DefaultLogPath),
		LogLevel:     getEnvWithDefault("LOG_LEVEL", "info"),
		DBPath:       getEnvWithDefault("SV2_BRIDGE_DB", defaultDBPath()),
		Bottle:       os.Getenv("SV2_BOTTLE_NAME"),
		ResponseType: getEnvWithDefault("SV2_OAUTH_RESPONSE_TYPE", "code"),
	}
	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./invocations.db"
	}
	return filepath.Join(home, ".sv2-bridge", "invocations.db")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
