package config

import (
	"strings"
	"time"

	"gowa-blast/internal/helper"
)

// Config holds everything read from the environment. Defaults keep a
// bare `go run .` working for Indonesian numbers out of the box.
type Config struct {
	Port string

	// SessionDir is the session-data root: one subdirectory with the
	// persisted credentials per session id.
	SessionDir string

	// ContactsDir holds server-side contact list files for /send-file.
	ContactsDir string

	BlastLogPath string

	CountryPrefix string
	AddressSuffix string

	MinDelay time.Duration
	MaxDelay time.Duration

	// DeviceName shows up in the phone's linked-devices list.
	DeviceName string

	CORSAllowOrigins []string

	RateLimitPerSecond int
	RateLimitBurst     int
	RateLimitWindow    time.Duration

	// JWTSecret enables bearer-token auth when non-empty; APIKey is
	// what callers exchange for a token.
	JWTSecret string
	APIKey    string
}

func Load() *Config {
	origins := strings.Split(helper.GetEnv("CORS_ALLOW_ORIGINS", "*"), ",")
	for i, o := range origins {
		origins[i] = strings.TrimSpace(o)
	}

	return &Config{
		Port:          helper.GetEnv("PORT", "3000"),
		SessionDir:    helper.GetEnv("SESSION_DIR", "./session"),
		ContactsDir:   helper.GetEnv("CONTACTS_DIR", "./data/contacts"),
		BlastLogPath:  helper.GetEnv("BLAST_LOG_PATH", "./data/logs/blast.log"),
		CountryPrefix: helper.GetEnv("COUNTRY_PREFIX", helper.DefaultCountryPrefix),
		AddressSuffix: helper.GetEnv("ADDRESS_SUFFIX", helper.DefaultAddressSuffix),

		MinDelay: time.Duration(helper.GetEnvAsInt("BLAST_DELAY_MIN_MS", 2000)) * time.Millisecond,
		MaxDelay: time.Duration(helper.GetEnvAsInt("BLAST_DELAY_MAX_MS", 5000)) * time.Millisecond,

		DeviceName: helper.GetEnv("DEVICE_NAME", "GOWA Blast"),

		CORSAllowOrigins: origins,

		RateLimitPerSecond: helper.GetEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     helper.GetEnvAsInt("RATE_LIMIT_BURST", 10),
		RateLimitWindow:    time.Duration(helper.GetEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 3)) * time.Minute,

		JWTSecret: helper.GetEnv("JWT_SECRET", ""),
		APIKey:    helper.GetEnv("API_KEY", ""),
	}
}
