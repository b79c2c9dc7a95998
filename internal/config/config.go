package config

import (
	"os"
	"strconv"
)

// Config junta la configuración del proceso. Todo viene de variables de
// entorno; no hay archivo de configuración.
type Config struct {
	Port         int
	DBDSN        string
	MaxBodyBytes int64

	LogLevel  string
	LogFormat string
	AppName   string
}

func Load() Config {
	cfg := Config{
		Port:         8080,
		MaxBodyBytes: 1 << 20,
		DBDSN:        os.Getenv("DB_DSN"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogFormat:    os.Getenv("LOG_FORMAT"),
		AppName:      getEnvOrDefault("APP_NAME", "pr-insights"),
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Port = p
		}
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}

	return cfg
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
