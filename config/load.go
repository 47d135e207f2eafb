package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func Load() App {
	cfg := App{
		Port:           getenv("APP_PORT", "8080"),
		DatabaseURL:    must("DATABASE_URL"),
		JWTSecret:      getenv("JWT_SECRET", "local_dev_secret"),
		TokenTTL:       getdur("TOKEN_TTL", 24*time.Hour),
		ReservationTTL: getdur("RESERVATION_TTL", time.Hour),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getint("SMTP_PORT", 587),
		SMTPLogin:      os.Getenv("SMTP_LOGIN"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		Env:            getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("bad int env, using default", "key", k, "value", v)
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("bad duration env, using default", "key", k, "value", v)
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
