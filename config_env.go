package taskauth

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ConfigFromEnv builds a [Config] from the process environment, loading an
// optional .env file first. Every secret the engine needs lives here —
// backend credentials, the email API key, and the legacy hash secret are
// never compiled in.
//
// Recognized variables:
//
//	SURREAL_URL, SURREAL_NS, SURREAL_DB, SURREAL_USER, SURREAL_PASS
//	BREVO_API_KEY, EMAIL_SENDER_NAME, EMAIL_SENDER_ADDRESS
//	LEGACY_HASH_SECRET
//	SESSION_TTL, VERIFICATION_TTL, RESET_TTL           (Go durations)
//	RATE_LOGIN_MAX, RATE_SIGNUP_MAX, RATE_RESET_MAX     (integers)
//	RATE_LOGIN_WINDOW, RATE_SIGNUP_WINDOW, RATE_RESET_WINDOW
//	CLEANUP_INTERVAL
//
// Unset optional variables keep their [DefaultConfig] values.
func ConfigFromEnv() Config {
	// A missing .env file is fine; the variables may come from the real
	// environment.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	cfg.Backend.URL = getenv("SURREAL_URL", cfg.Backend.URL)
	cfg.Backend.Namespace = getenv("SURREAL_NS", cfg.Backend.Namespace)
	cfg.Backend.Database = getenv("SURREAL_DB", cfg.Backend.Database)
	cfg.Backend.Username = getenv("SURREAL_USER", cfg.Backend.Username)
	cfg.Backend.Password = getenv("SURREAL_PASS", cfg.Backend.Password)

	cfg.Email.APIKey = getenv("BREVO_API_KEY", cfg.Email.APIKey)
	cfg.Email.SenderName = getenv("EMAIL_SENDER_NAME", cfg.Email.SenderName)
	cfg.Email.SenderEmail = getenv("EMAIL_SENDER_ADDRESS", cfg.Email.SenderEmail)

	cfg.Password.LegacySecret = getenv("LEGACY_HASH_SECRET", cfg.Password.LegacySecret)

	cfg.Session.TTL = getenvDuration("SESSION_TTL", cfg.Session.TTL)
	cfg.Verification.TTL = getenvDuration("VERIFICATION_TTL", cfg.Verification.TTL)
	cfg.Reset.TTL = getenvDuration("RESET_TTL", cfg.Reset.TTL)
	cfg.Cleanup.Interval = getenvDuration("CLEANUP_INTERVAL", cfg.Cleanup.Interval)

	cfg.RateLimit.Login.MaxRequests = getenvInt("RATE_LOGIN_MAX", cfg.RateLimit.Login.MaxRequests)
	cfg.RateLimit.Signup.MaxRequests = getenvInt("RATE_SIGNUP_MAX", cfg.RateLimit.Signup.MaxRequests)
	cfg.RateLimit.Reset.MaxRequests = getenvInt("RATE_RESET_MAX", cfg.RateLimit.Reset.MaxRequests)
	cfg.RateLimit.Login.Window = getenvDuration("RATE_LOGIN_WINDOW", cfg.RateLimit.Login.Window)
	cfg.RateLimit.Signup.Window = getenvDuration("RATE_SIGNUP_WINDOW", cfg.RateLimit.Signup.Window)
	cfg.RateLimit.Reset.Window = getenvDuration("RATE_RESET_WINDOW", cfg.RateLimit.Reset.Window)

	return cfg
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
