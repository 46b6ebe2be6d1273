package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required variables are enforced by must()
// and missing values cause the program to exit with a fatal log message.
type Config struct {
	Env           string        // application environment ("dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	BcryptCost    int           // bcrypt cost for hospital password hashing
	SessionTTL    time.Duration // idle window before a hospital session expires
	ScorerURL     string        // external relevance scorer endpoint (optional)
	ScorerAPIKey  string        // bearer token for the scorer (optional)
	ScorerTimeout time.Duration // hard cap on one scorer call
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		BcryptCost:    mustInt("BCRYPT_COST"),
		SessionTTL:    time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		ScorerURL:     os.Getenv("SCORER_URL"),
		ScorerAPIKey:  os.Getenv("SCORER_API_KEY"),
		ScorerTimeout: time.Duration(envInt("SCORER_TIMEOUT_MS", 3000)) * time.Millisecond,
	}
}

// IsProd reports whether the service runs in production mode; the
// bootstrap endpoint is disabled there.
func (c Config) IsProd() bool { return c.Env == "prod" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
