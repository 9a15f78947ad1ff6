// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultJenkinsJob        = "dumpyara"
	DefaultJenkinsPrivateJob = "privdump"
	DefaultJenkinsTimeout    = 10 * time.Second
	DefaultServiceName       = "dumpyarabot"
)

// Config holds all configuration for the application.
type Config struct {
	TelegramBotToken     string
	DatabaseURL          string
	LogLevel             string
	LogFormat            string
	JenkinsURL           string
	JenkinsUserName      string
	JenkinsUserToken     string
	JenkinsJob           string
	JenkinsPrivateJob    string
	JenkinsTimeout       time.Duration
	AllowedChats         []int64
	WhitelistedUserIDs   []int64
	WhitelistedUsernames []string
	OTelExporter         string
	ServiceName          string

	rawJenkinsTimeout string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         os.Getenv("LOG_FORMAT"),
		JenkinsURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("JENKINS_URL")), "/"),
		JenkinsUserName:   os.Getenv("JENKINS_USER_NAME"),
		JenkinsUserToken:  os.Getenv("JENKINS_USER_TOKEN"),
		JenkinsJob:        envOr("JENKINS_JOB", DefaultJenkinsJob),
		JenkinsPrivateJob: envOr("JENKINS_PRIVATE_JOB", DefaultJenkinsPrivateJob),
		JenkinsTimeout:    DefaultJenkinsTimeout,
		OTelExporter:      envOr("OTEL_EXPORTER", "none"),
		ServiceName:       envOr("OTEL_SERVICE_NAME", DefaultServiceName),
		rawJenkinsTimeout: strings.TrimSpace(os.Getenv("JENKINS_TIMEOUT")),
	}

	cfg.AllowedChats = parseIDList(os.Getenv("ALLOWED_CHATS"))
	cfg.WhitelistedUserIDs = parseIDList(os.Getenv("WHITELISTED_USER_IDS"))

	whitelistUsernames := os.Getenv("WHITELISTED_USERNAMES")
	if whitelistUsernames != "" {
		for username := range strings.SplitSeq(whitelistUsernames, ",") {
			username = strings.TrimSpace(username)
			if username == "" {
				continue
			}
			// Remove @ prefix if present
			username = strings.TrimPrefix(username, "@")
			cfg.WhitelistedUsernames = append(cfg.WhitelistedUsernames, username)
		}
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envOr returns the trimmed value of key, or fallback when it is empty.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseIDList parses a comma separated list of integer IDs, skipping
// empty and malformed entries.
func parseIDList(s string) []int64 {
	if s == "" {
		return nil
	}
	var ids []int64
	for idStr := range strings.SplitSeq(s, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// validate checks that all required configuration is present and applies
// the parsed JENKINS_TIMEOUT.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.JenkinsURL == "" {
		errs = append(errs, "JENKINS_URL is required")
	} else if u, err := url.Parse(c.JenkinsURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, "JENKINS_URL must be an absolute http(s) URL")
	}

	if c.rawJenkinsTimeout != "" {
		d, err := time.ParseDuration(c.rawJenkinsTimeout)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("JENKINS_TIMEOUT %q is not a valid duration (e.g. 30s)", c.rawJenkinsTimeout))
		case d <= 0:
			errs = append(errs, fmt.Sprintf("JENKINS_TIMEOUT %q must be positive", c.rawJenkinsTimeout))
		default:
			c.JenkinsTimeout = d
		}
	}

	switch c.OTelExporter {
	case "none", "stdout", "otlp-http", "otlp-grpc":
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not one of none, stdout, otlp-http, otlp-grpc", c.OTelExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsChatAllowed reports whether the bot may serve chatID.
// An empty allow list permits every chat.
func (c *Config) IsChatAllowed(chatID int64) bool {
	if len(c.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.AllowedChats, chatID)
}

// IsUserWhitelisted checks if a Telegram user ID or username is in the whitelist.
// Returns true if either the user ID or username is whitelisted.
func (c *Config) IsUserWhitelisted(userID int64, username string) bool {
	// Check user ID whitelist
	if slices.Contains(c.WhitelistedUserIDs, userID) {
		return true
	}

	// Check username whitelist (case-insensitive)
	if username != "" {
		username = strings.TrimPrefix(username, "@")
		for _, whitelisted := range c.WhitelistedUsernames {
			if strings.EqualFold(whitelisted, username) {
				return true
			}
		}
	}

	return false
}
