package config

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TARGET_HOST", "TRAFFIC_PORT", "WEATHER_PORT", "OWNSHIP_PORT",
		"NATS_URL", "REDIS_ADDR", "TRANSCRIPT_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.TrafficPort != DefaultTrafficPort {
		t.Errorf("TrafficPort = %d, want %d", cfg.TrafficPort, DefaultTrafficPort)
	}
	if cfg.WeatherPort != DefaultWeatherPort {
		t.Errorf("WeatherPort = %d, want %d", cfg.WeatherPort, DefaultWeatherPort)
	}
	if cfg.OwnshipPort != DefaultOwnshipPort {
		t.Errorf("OwnshipPort = %d, want %d", cfg.OwnshipPort, DefaultOwnshipPort)
	}
	if cfg.NATSURL != "" || cfg.RedisAddr != "" || cfg.TranscriptDir != "" {
		t.Errorf("optional collaborators should default to disabled, got %+v", cfg)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TARGET_HOST", "192.168.1.10")
	t.Setenv("TRAFFIC_PORT", "10110")
	t.Setenv("WEATHER_PORT", "10111")
	t.Setenv("OWNSHIP_PORT", "10112")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRANSCRIPT_DIR", "/tmp/replay")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Host != "192.168.1.10" {
		t.Errorf("Host = %q, want %q", cfg.Host, "192.168.1.10")
	}
	if cfg.TrafficPort != 10110 || cfg.WeatherPort != 10111 || cfg.OwnshipPort != 10112 {
		t.Errorf("ports = %d/%d/%d, want 10110/10111/10112",
			cfg.TrafficPort, cfg.WeatherPort, cfg.OwnshipPort)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.TranscriptDir != "/tmp/replay" {
		t.Errorf("TranscriptDir = %q", cfg.TranscriptDir)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric traffic port", "TRAFFIC_PORT", "not-a-port"},
		{"zero weather port", "WEATHER_PORT", "0"},
		{"out of range ownship port", "OWNSHIP_PORT", "70000"},
		{"negative traffic port", "TRAFFIC_PORT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail for %s=%q", tt.key, tt.value)
			}
		})
	}
}
