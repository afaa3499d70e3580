// Package config defines the process configuration read from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pkgconfig "github.com/dmitrymomot/snaketips/pkg/config"
	"github.com/dmitrymomot/snaketips/pkg/environment"
	"github.com/dmitrymomot/snaketips/pkg/httpserver"
	"github.com/dmitrymomot/snaketips/pkg/redis"
)

// ServiceName is attached to every log record.
const ServiceName = "snaketips"

// Config is the root configuration.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	HTTP        httpserver.Config
	Redis       redis.Config
	Tips        TipsConfig
	Leaderboard LeaderboardConfig
	RateLimit   RateLimitConfig

	// TrustedIPHeaders lists forwarding headers honoured when resolving the
	// client address, e.g. "X-Forwarded-For". Empty means RemoteAddr only.
	TrustedIPHeaders []string `env:"TRUSTED_IP_HEADERS" envSeparator:","`
}

// TipsConfig tunes the tips stream and its producer.
type TipsConfig struct {
	Interval        time.Duration `env:"TIPS_INTERVAL" envDefault:"8s"`
	Retry           time.Duration `env:"TIPS_RETRY" envDefault:"5s"`
	MailboxCapacity int           `env:"TIPS_MAILBOX_CAPACITY" envDefault:"20"`
	HistorySize     int           `env:"TIPS_HISTORY_SIZE" envDefault:"50"`
}

// LeaderboardConfig tunes the leaderboard change stream.
type LeaderboardConfig struct {
	Retry           time.Duration `env:"LEADERBOARD_RETRY" envDefault:"5s"`
	MailboxCapacity int           `env:"LEADERBOARD_MAILBOX_CAPACITY" envDefault:"50"`
	HistorySize     int           `env:"LEADERBOARD_HISTORY_SIZE" envDefault:"100"`
}

// RateLimitConfig bounds score submissions per client.
type RateLimitConfig struct {
	Submissions int           `env:"RATE_LIMIT_SUBMISSIONS" envDefault:"5"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Load reads the configuration from the environment and optional .env files.
func Load(files ...string) (Config, error) {
	return pkgconfig.Load[Config](files...)
}

// Environment returns the parsed APP_ENV.
func (c *Config) Environment() environment.Environment {
	return environment.Parse(c.AppEnv)
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	positiveDuration := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	positiveDuration("TIPS_INTERVAL", c.Tips.Interval)
	positiveDuration("TIPS_RETRY", c.Tips.Retry)
	positive("TIPS_MAILBOX_CAPACITY", c.Tips.MailboxCapacity)
	positive("TIPS_HISTORY_SIZE", c.Tips.HistorySize)
	positiveDuration("LEADERBOARD_RETRY", c.Leaderboard.Retry)
	positive("LEADERBOARD_MAILBOX_CAPACITY", c.Leaderboard.MailboxCapacity)
	positive("LEADERBOARD_HISTORY_SIZE", c.Leaderboard.HistorySize)
	positive("RATE_LIMIT_SUBMISSIONS", c.RateLimit.Submissions)
	positiveDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window)

	if c.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	return errors.Join(errs...)
}
