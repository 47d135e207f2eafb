package config

import "time"

type App struct {
	Port           string        `env:"APP_PORT" default:"8080"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" default:"24h"`
	ReservationTTL time.Duration `env:"RESERVATION_TTL" default:"1h"`
	SMTPHost       string        `env:"SMTP_HOST"`
	SMTPPort       int           `env:"SMTP_PORT" default:"587"`
	SMTPLogin      string        `env:"SMTP_LOGIN"`
	SMTPPassword   string        `env:"SMTP_PASSWORD"`
	Env            string        `env:"APP_ENV" default:"dev"`
}
