package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Payment cleanup policies for task aggregate updates. "orphan" preserves
// payment rows whose task/assistant link was removed (the rows remain as
// historical records); "cascade" deletes them together with the link rows.
const (
	PaymentCleanupOrphan  = "orphan"
	PaymentCleanupCascade = "cascade"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign JWTs
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	OTPTTL         time.Duration // lifetime of a password-reset OTP entry
	PaymentCleanup string        // "orphan" or "cascade" (see constants above)
	SMTPHost       string        // outbound mail server host (empty disables SMTP)
	SMTPPort       string        // outbound mail server port
	SMTPUser       string        // SMTP auth username
	SMTPPass       string        // SMTP auth password
	SMTPFrom       string        // From address on outgoing mail
	ContactInbox   string        // destination for contact-form forwarding
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message. Mail and cleanup settings are
// optional and fall back to safe defaults.
func Load() Config {
	cleanup := os.Getenv("PAYMENT_CLEANUP")
	if cleanup != PaymentCleanupCascade {
		cleanup = PaymentCleanupOrphan // legacy default: keep orphaned payment rows
	}
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		OTPTTL:         durOr("OTP_TTL", 5*time.Minute),
		PaymentCleanup: cleanup,
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       envOr("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		SMTPFrom:       envOr("SMTP_FROM", "no-reply@ritualplanner.app"),
		ContactInbox:   os.Getenv("CONTACT_INBOX"),
	}
}

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

// envOr returns the variable's value or a default when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// durOr parses a duration from the environment or returns the default.
func durOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
