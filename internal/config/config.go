package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"paketomat/internal/label"
	"paketomat/internal/portal"
)

// Config holds all application configuration
type Config struct {
	// Portal connection
	PortalBaseURL     string
	PortalTrackingURL string
	PortalUsername    string
	PortalPassword    string
	PortalTimeout     time.Duration
	PortalUserAgent   string
	PortalPrinterName string

	// Label rendering
	GhostscriptPath string
	LabelWidth      int
	LabelHeight     int
	LabelResolution int

	// Label service
	ServerHost   string
	ServerPort   string
	ServerAPIKey string

	// Lookup cache of the label service
	CacheDisabled bool
	CacheTTL      time.Duration

	LogLevel     string
	OutputFormat string
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if err := validateHTTPURL("portal base URL", c.PortalBaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("portal tracking URL", c.PortalTrackingURL); err != nil {
		return err
	}

	if c.PortalTimeout <= 0 {
		return fmt.Errorf("portal timeout must be positive")
	}

	if c.LabelWidth <= 0 || c.LabelHeight <= 0 {
		return fmt.Errorf("invalid label size: %dx%d", c.LabelWidth, c.LabelHeight)
	}
	if c.LabelResolution <= 0 {
		return fmt.Errorf("invalid label resolution: %d", c.LabelResolution)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}

	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.ServerPort)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.OutputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output format: %s (must be table or json)", c.OutputFormat)
	}

	return nil
}

func validateHTTPURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", name)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s: missing host", name)
	}
	return nil
}

// RequireCredentials reports an error when no portal login is configured
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.PortalUsername == "" {
		missing = append(missing, "portal.username")
	}
	if c.PortalPassword == "" {
		missing = append(missing, "portal.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing portal credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Address returns the server address in host:port format
func (c *Config) Address() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// PortalConfig returns the client settings for the portal
func (c *Config) PortalConfig() *portal.Config {
	return &portal.Config{
		BaseURL:     c.PortalBaseURL,
		TrackingURL: c.PortalTrackingURL,
		Timeout:     c.PortalTimeout,
		UserAgent:   c.PortalUserAgent,
		PrinterName: c.PortalPrinterName,
	}
}

// LabelOptions returns the rasterizer settings
func (c *Config) LabelOptions() label.Options {
	return label.Options{
		GhostscriptPath: c.GhostscriptPath,
		Width:           c.LabelWidth,
		Height:          c.LabelHeight,
		Resolution:      c.LabelResolution,
	}
}

// EffectiveCacheTTL returns the cache TTL, or zero when caching is disabled
func (c *Config) EffectiveCacheTTL() time.Duration {
	if c.CacheDisabled {
		return 0
	}
	return c.CacheTTL
}

// SlogLevel maps LogLevel to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
