package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	// TimeZone is the IANA zone bookings are scheduled in. Day boundaries and
	// start/end comparisons for the status engine all happen in this zone.
	TimeZone string

	// BookingTestIntervalMin switches the status job from the production cron
	// cadence (minutes 0,15,30,45) to a fixed every-N-minutes interval.
	// 0 means cron cadence.
	BookingTestIntervalMin int

	// AccidentAnonTestIntervalMin does the same for the anonymiser (nightly
	// at 00:05 UTC when 0). A non-zero value also drops the "previous day
	// only" rule so test runs see an effect immediately.
	AccidentAnonTestIntervalMin int

	Auth AuthConfig

	// AdminAllowedOrigins is a comma-separated allowlist of origins allowed to
	// call the admin API from a browser frontend.
	AdminAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	// JWTSecret signs staff bearer tokens (HS256).
	JWTSecret string

	// StaffSharedSecret is exchanged for a token via POST /v1/auth/token.
	// Ops convenience only; leave empty to disable the endpoint.
	StaffSharedSecret string

	// TokenTTLMinutes bounds issued tokens (default 8h).
	TokenTTLMinutes int
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "trainingdesk"),
			User:     env("DB_USER", "trainingdesk"),
			Password: env("DB_PASSWORD", "trainingdesk"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},

		TimeZone: env("TIME_ZONE", "Europe/London"),

		BookingTestIntervalMin:      envInt("BOOKING_TEST_INTERVAL_MIN", 0),
		AccidentAnonTestIntervalMin: envInt("ACCIDENT_ANON_TEST_MIN", 0),

		Auth: AuthConfig{
			JWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
			StaffSharedSecret: os.Getenv("AUTH_STAFF_SECRET"),
			TokenTTLMinutes:   envInt("AUTH_TOKEN_TTL_MIN", 480),
		},

		AdminAllowedOrigins: envList("ADMIN_ALLOWED_ORIGINS", "http://localhost:5173"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
