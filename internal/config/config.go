package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Well-known ports of the RealTraffic/ForeFlight UDP ecosystem.
const (
	DefaultHost        = "localhost"
	DefaultTrafficPort = 49005
	DefaultWeatherPort = 49004
	DefaultOwnshipPort = 49002
)

// Config holds the environment-level configuration. Command-line flags
// override these values.
type Config struct {
	Host        string
	TrafficPort int
	WeatherPort int
	OwnshipPort int

	// Optional collaborators; empty means disabled.
	NATSURL       string
	RedisAddr     string
	TranscriptDir string
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Host:          envOr("TARGET_HOST", DefaultHost),
		NATSURL:       os.Getenv("NATS_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		TranscriptDir: os.Getenv("TRANSCRIPT_DIR"),
	}

	var err error
	if cfg.TrafficPort, err = envPort("TRAFFIC_PORT", DefaultTrafficPort); err != nil {
		return nil, err
	}
	if cfg.WeatherPort, err = envPort("WEATHER_PORT", DefaultWeatherPort); err != nil {
		return nil, err
	}
	if cfg.OwnshipPort, err = envPort("OWNSHIP_PORT", DefaultOwnshipPort); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envPort(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	port, err := strconv.Atoi(v)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s: invalid port %q", key, v)
	}
	return port, nil
}
