package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/joho/godotenv"
)

// ClientConfig configures cmd/client.
type ClientConfig struct {
	ServerURL    string        `env:"BROADSIDE_SERVER_URL" envDefault:"ws://127.0.0.1:3000/ws"`
	LogLevel     string        `env:"BROADSIDE_LOG_LEVEL" envDefault:"info"`
	LogFile      string        `env:"BROADSIDE_LOG_FILE" envDefault:"broadside.log"`
	Journal      string        `env:"BROADSIDE_JOURNAL"`
	PollInterval time.Duration `env:"BROADSIDE_POLL_INTERVAL" envDefault:"50ms"`
	Debug        bool          `env:"BROADSIDE_DEBUG"`
}

// ReplayConfig configures cmd/replay.
type ReplayConfig struct {
	Addr     string        `env:"BROADSIDE_REPLAY_ADDR" envDefault:":3000"`
	Journal  string        `env:"BROADSIDE_JOURNAL"`
	Session  string        `env:"BROADSIDE_REPLAY_SESSION"`
	Delay    time.Duration `env:"BROADSIDE_REPLAY_DELAY" envDefault:"500ms"`
	LogLevel string        `env:"BROADSIDE_LOG_LEVEL" envDefault:"info"`
	// Token guards the listing endpoints when set.
	Token string `env:"BROADSIDE_REPLAY_TOKEN"`
}

// LoadDotEnv loads variables from the given files, or ./.env when none are
// given, without overriding variables already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadClientConfig() (ClientConfig, error) {
	var cfg ClientConfig
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadReplayConfig() (ReplayConfig, error) {
	var cfg ReplayConfig
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values flags and env may have got wrong.
func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid server url %q: scheme must be ws or wss", c.ServerURL)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

func (c ReplayConfig) Validate() error {
	if c.Journal == "" {
		return fmt.Errorf("a journal is required to replay from")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
