package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the duration-valued settings
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  HoldTTL and LockTTL are correctness
// parameters, not performance knobs: HoldTTL bounds how long an
// unresponsive claimant can starve a seat, and LockTTL must exceed the
// worst-case duration of the claim critical section.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret used to verify bearer tokens
	RabbitURL     string        // AMQP broker URL (optional; queue features degrade when empty)
	HoldTTL       time.Duration // fixed provisional-hold window
	LockTTL       time.Duration // seat admission lock time-to-live
	SweepInterval time.Duration // background sweeper period; 0 disables the sweeper
	SweepBatch    int           // max overdue holds voided per sweep pass
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		JWTSecret:     must("JWT_SECRET"),
		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		HoldTTL:       envDur("HOLD_TTL", 5*time.Minute),
		LockTTL:       envDur("LOCK_TTL", 30*time.Second),
		SweepInterval: envDur("SWEEP_INTERVAL", time.Minute),
		SweepBatch:    envInt("SWEEP_BATCH", 100),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an integer variable, falling back to d when unset or
// malformed.
func envInt(key string, d int) int {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envDur reads a duration variable in time.ParseDuration syntax
// (e.g. "5m", "30s"), falling back to d when unset or malformed.
func envDur(key string, d time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
