package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for intervals.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	JWTSecret        string // secret used to verify storefront-issued JWTs
	UpstreamURL      string // base URL of the storefront API (sessions, seats, checkout)
	DBUser           string // journal database username (optional)
	DBPass           string // journal database password (optional)
	DBHost           string // journal database host; empty disables the handoff journal
	DBPort           string // journal database port
	DBName           string // journal database name
	SweepIntervalSec int    // cadence of the terminal-flow registry sweep, in seconds
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The journal
// database block is optional: leaving DB_HOST unset runs the gateway
// without the durable handoff journal.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),       // environment (dev/test/prod)
		Port:             must("APP_PORT"),      // port to bind the HTTP server
		JWTSecret:        must("JWT_SECRET"),    // secret shared with the auth collaborator
		UpstreamURL:      must("UPSTREAM_URL"),  // storefront API base URL
		DBUser:           os.Getenv("DB_USER"),  // journal DB user (optional)
		DBPass:           os.Getenv("DB_PASS"),  // journal DB password (optional)
		DBHost:           os.Getenv("DB_HOST"),  // journal DB host (optional)
		DBPort:           os.Getenv("DB_PORT"),  // journal DB port (optional)
		DBName:           os.Getenv("DB_NAME"),  // journal DB name (optional)
		SweepIntervalSec: intOr("FLOW_SWEEP_INTERVAL_SEC", 60), // registry sweep cadence
	}
}

// JournalConfigured reports whether the optional MySQL handoff journal
// has enough configuration to be opened.
func (c Config) JournalConfigured() bool {
	return c.DBHost != "" && c.DBUser != "" && c.DBName != ""
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

// intOr converts an optional environment variable to an integer, falling
// back to the given default when unset.  An unparsable value is fatal.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
