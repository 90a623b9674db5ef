// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration, loaded from YAML with
// environment-variable overrides. Every knob has a sensible default so
// a bare binary runs against local dev services.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Queue    string `yaml:"queue"`
	} `yaml:"redis"`
	Game struct {
		MinRevealDelay string `yaml:"minRevealDelay"`
		RevealPause    string `yaml:"revealPause"`
		CodeAttempts   int    `yaml:"codeAttempts"`
	} `yaml:"game"`
	WS struct {
		PingInterval   string `yaml:"pingInterval"`
		LivenessWindow string `yaml:"livenessWindow"`
	} `yaml:"ws"`
}

// Load reads YAML config from path, then applies environment
// overrides. A missing file is not an error; env and defaults carry.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Postgres.URL = getEnv("DATABASE_URL", cfg.Postgres.URL)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Queue = getEnv("EVENT_QUEUE_NAME", cfg.Redis.Queue)

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if the
// string is empty or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
