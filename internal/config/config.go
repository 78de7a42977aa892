// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars
//   on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DSN is the SQLite database path.
	DSN string `koanf:"dsn"`

	// JWTSecret signs access tokens. The default is for local development.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTLMinutes bounds access token lifetime.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`

	// BcryptCost tunes password hashing. 0 selects the library default.
	BcryptCost int `koanf:"bcrypt_cost"`

	// QueueSize bounds the in-memory recompute job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of replay workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RecentRounds caps the recent-round list on GET /stats.
	RecentRounds int `koanf:"recent_rounds"`

	// InitialRating is the rating before a player's first round.
	InitialRating float64 `koanf:"initial_rating"`

	// KFactor is the per-question Elo K factor.
	KFactor float64 `koanf:"k_factor"`

	// OpponentRatings maps difficulty tiers to fixed opponent ratings.
	OpponentRatings map[string]float64 `koanf:"opponent_ratings"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DSN:                 "./clef.db",
		JWTSecret:           "dev-secret-change-me",
		TokenTTLMinutes:     60,
		BcryptCost:          0,
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		RecentRounds:        50,
		InitialRating:       1000.0,
		KFactor:             32.0,
		OpponentRatings: map[string]float64{
			"easy":   800.0,
			"medium": 1000.0,
			"hard":   1200.0,
		},
	}
}
