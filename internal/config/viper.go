package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"paketomat/internal/label"
	"paketomat/internal/portal"
)

const envPrefix = "PAKETOMAT"

// LoadWithViper loads configuration from defaults, an optional config file
// and PAKETOMAT_* environment variables, in increasing precedence.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	setupEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Load loads configuration using a fresh Viper instance
func Load() (*Config, error) {
	return LoadWithViper(viper.New())
}

// LoadWithFile loads configuration from a specific file
func LoadWithFile(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	return LoadWithViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("portal.base_url", portal.DefaultBaseURL)
	v.SetDefault("portal.tracking_url", portal.DefaultTrackingURL)
	v.SetDefault("portal.username", "")
	v.SetDefault("portal.password", "")
	v.SetDefault("portal.timeout", portal.DefaultTimeout.String())
	v.SetDefault("portal.user_agent", portal.DefaultUserAgent)
	v.SetDefault("portal.printer_name", portal.DefaultPrinterName)

	v.SetDefault("label.ghostscript_path", label.DefaultGhostscriptPath)
	v.SetDefault("label.width", label.DefaultWidth)
	v.SetDefault("label.height", label.DefaultHeight)
	v.SetDefault("label.resolution", label.DefaultResolution)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("output.format", "table")
}

func setupEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"portal.base_url":        "PORTAL_BASE_URL",
		"portal.tracking_url":    "PORTAL_TRACKING_URL",
		"portal.username":        "PORTAL_USERNAME",
		"portal.password":        "PORTAL_PASSWORD",
		"portal.timeout":         "PORTAL_TIMEOUT",
		"portal.user_agent":      "PORTAL_USER_AGENT",
		"portal.printer_name":    "PORTAL_PRINTER_NAME",
		"label.ghostscript_path": "LABEL_GHOSTSCRIPT_PATH",
		"label.width":            "LABEL_WIDTH",
		"label.height":           "LABEL_HEIGHT",
		"label.resolution":       "LABEL_RESOLUTION",
		"server.host":            "SERVER_HOST",
		"server.port":            "SERVER_PORT",
		"server.api_key":         "SERVER_API_KEY",
		"cache.disabled":         "CACHE_DISABLED",
		"cache.ttl":              "CACHE_TTL",
		"logging.level":          "LOGGING_LEVEL",
		"output.format":          "OUTPUT_FORMAT",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, envPrefix+"_"+envSuffix)
	}
}

// loadConfigFile reads an explicitly set file, or searches the default
// locations for paketomat.{yaml,toml,json}. A missing file is not an error.
func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME")
		v.SetConfigName("paketomat")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

func unmarshalConfig(v *viper.Viper, config *Config) error {
	config.PortalBaseURL = v.GetString("portal.base_url")
	config.PortalTrackingURL = v.GetString("portal.tracking_url")
	config.PortalUsername = v.GetString("portal.username")
	config.PortalPassword = v.GetString("portal.password")
	config.PortalUserAgent = v.GetString("portal.user_agent")
	config.PortalPrinterName = v.GetString("portal.printer_name")

	var err error
	config.PortalTimeout, err = time.ParseDuration(v.GetString("portal.timeout"))
	if err != nil {
		return fmt.Errorf("invalid portal timeout: %w", err)
	}

	config.GhostscriptPath = v.GetString("label.ghostscript_path")
	config.LabelWidth = v.GetInt("label.width")
	config.LabelHeight = v.GetInt("label.height")
	config.LabelResolution = v.GetInt("label.resolution")

	config.ServerHost = v.GetString("server.host")
	config.ServerPort = v.GetString("server.port")
	config.ServerAPIKey = v.GetString("server.api_key")
	config.CacheDisabled = v.GetBool("cache.disabled")
	config.CacheTTL = v.GetDuration("cache.ttl")

	config.LogLevel = v.GetString("logging.level")
	config.OutputFormat = v.GetString("output.format")

	return nil
}
