package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Booking BookingConfig // table-booking behavior knobs
	Payment PaymentConfig // payment gateway settings
}

// BookingConfig gathers the tunables of the availability engine and
// the reservation lifecycle. All values have defaults so a bare
// environment still boots with sensible behavior.
type BookingConfig struct {
	OccupancyMinutes    int // how long a table is held per seating
	SlotIntervalMinutes int // spacing between generated time slots
	MaxAdvanceDays      int // booking horizon in days
	PendingTTLMinutes   int // auto-expiry for abandoned pending reservations
	ArrivalEarlyMinutes int // how early a guest may be marked arrived
	ArrivalGraceMinutes int // grace after the slot time before no_show applies
	RatingGraceSeconds  int // settle window before a rating prompt fires
}

// PaymentConfig describes how to reach the payment gateway. An empty
// BaseURL disables the HTTP gateway; the server then falls back to the
// in-process stub, which never confirms a deposit.
type PaymentConfig struct {
	BaseURL    string // payment gateway base URL
	TimeoutSec int    // per-call timeout; a timeout counts as payment failure
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
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
		Booking:        LoadBookingConfig(),
		Payment: PaymentConfig{
			BaseURL:    os.Getenv("PAYMENT_GATEWAY_URL"),
			TimeoutSec: envIntDefault("PAYMENT_TIMEOUT_SEC", 10),
		},
	}
}

// LoadBookingConfig reads the booking knobs with their defaults. The
// 90 minute occupancy default mirrors product guidance for a standard
// seating; it is deliberately configurable rather than hard-wired.
func LoadBookingConfig() BookingConfig {
	return BookingConfig{
		OccupancyMinutes:    envIntDefault("OCCUPANCY_MINUTES", 90),
		SlotIntervalMinutes: envIntDefault("SLOT_INTERVAL_MINUTES", 30),
		MaxAdvanceDays:      envIntDefault("MAX_ADVANCE_DAYS", 60),
		PendingTTLMinutes:   envIntDefault("PENDING_TTL_MINUTES", 15),
		ArrivalEarlyMinutes: envIntDefault("ARRIVAL_EARLY_MINUTES", 15),
		ArrivalGraceMinutes: envIntDefault("ARRIVAL_GRACE_MINUTES", 20),
		RatingGraceSeconds:  envIntDefault("RATING_GRACE_SECONDS", 60),
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

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envIntDefault returns the integer value of an optional variable or
// the provided default when the variable is unset or malformed.
func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
