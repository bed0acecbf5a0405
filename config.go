package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Harikaran1729/portfolio/internal/typewriter"
)

// Config is everything the server reads from the environment. A .env file in
// the working directory is loaded first (see main.go).
type Config struct {
	Addr  string
	Debug bool

	ContentPath  string
	WatchContent bool
	DBPath       string

	ContactMode  string // "simulate" or "smtp"
	ContactDelay time.Duration
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	ToEmail      string

	AdminUsername string
	AdminPassword string

	Typing typewriter.Config // phrases come from the content file

	OTLPEndpoint string
	OTLPInsecure bool
	ServiceName  string
}

const (
	contactSimulate = "simulate"
	contactSMTP     = "smtp"
)

// loadConfig builds a Config from getenv, applying development defaults.
func loadConfig(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	port := env("PORT", "8080")
	cfg := Config{
		Addr:          ":" + port,
		ContentPath:   env("PORTFOLIO_CONTENT", ""),
		DBPath:        env("PORTFOLIO_DB", "portfolio.db"),
		ContactMode:   strings.ToLower(env("CONTACT_MODE", contactSimulate)),
		SMTPHost:      env("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      env("SMTP_PORT", "587"),
		SMTPUser:      env("SMTP_USER", ""),
		SMTPPass:      env("SMTP_PASS", ""),
		ToEmail:       env("TO_EMAIL", ""),
		AdminUsername: env("ADMIN_USERNAME", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),
		OTLPEndpoint:  env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:   env("OTEL_SERVICE_NAME", "portfolio"),
		Typing:        typewriter.DefaultConfig(nil),
	}

	var errs []error
	parseBool := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
	parseDuration := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		d, err := parseDelay(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	parseBool("PORTFOLIO_DEBUG", &cfg.Debug)
	parseBool("PORTFOLIO_WATCH", &cfg.WatchContent)
	parseBool("OTEL_EXPORTER_OTLP_INSECURE", &cfg.OTLPInsecure)

	cfg.ContactDelay = time.Second
	parseDuration("CONTACT_DELAY", &cfg.ContactDelay)
	parseDuration("TYPE_DELAY", &cfg.Typing.TypeDelay)
	parseDuration("DELETE_DELAY", &cfg.Typing.DeleteDelay)
	parseDuration("PAUSE_FULL", &cfg.Typing.PauseFull)
	parseDuration("PAUSE_EMPTY", &cfg.Typing.PauseEmpty)
	parseDuration("START_DELAY", &cfg.Typing.StartDelay)

	if cfg.ContactMode != contactSimulate && cfg.ContactMode != contactSMTP {
		errs = append(errs, fmt.Errorf("CONTACT_MODE: want %q or %q, got %q", contactSimulate, contactSMTP, cfg.ContactMode))
	}
	if err := cfg.Typing.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.ContactDelay < 0 {
		errs = append(errs, fmt.Errorf("CONTACT_DELAY: must not be negative"))
	}

	return cfg, errors.Join(errs...)
}

// parseDelay accepts Go durations ("80ms", "1.5s") or bare milliseconds ("80").
func parseDelay(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
