// Package config derives service and gate configuration from the
// environment. Values come from environment variables, with an optional
// .env file loaded first; there are no configuration CLI flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/valtbarbos/Vocalis/pkg/turn"
)

// Defaults applied when the corresponding variable is unset or invalid.
const (
	DefaultHost      = "0.0.0.0"
	DefaultPort      = 8500
	DefaultThreshold = 0.5
	DefaultEndpoint  = "http://localhost:8500/predict"
)

// Config is the full configuration surface for both the prediction service
// and the client-side gate.
type Config struct {
	Host      string  // HOST
	Port      int     // PORT
	Threshold float64 // EOT_THRESHOLD, decision threshold in [0,1]
	ModelDir  string  // EOT_MODEL_DIR, empty means the default cache dir
	LogLevel  string  // EOT_LOG_LEVEL: debug|info|warn|error
	LogFormat string  // EOT_LOG_FORMAT: json|console

	Gate turn.GateConfig // EOT_ENDPOINT, EOT_ENABLED, EOT_TIMEOUT
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Host:      getEnv("HOST", DefaultHost),
		Port:      getEnvInt("PORT", DefaultPort),
		Threshold: getEnvFloat("EOT_THRESHOLD", DefaultThreshold),
		ModelDir:  os.Getenv("EOT_MODEL_DIR"),
		LogLevel:  getEnv("EOT_LOG_LEVEL", "info"),
		LogFormat: getEnv("EOT_LOG_FORMAT", "json"),
		Gate: turn.GateConfig{
			Endpoint: getEnv("EOT_ENDPOINT", DefaultEndpoint),
			Enabled:  getEnvBool("EOT_ENABLED", true),
			Timeout:  getEnvSeconds("EOT_TIMEOUT", turn.DefaultGateTimeout),
		},
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvSeconds parses a duration given as fractional seconds, e.g. "5.0".
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return fallback
}
