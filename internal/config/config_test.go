package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paketomat/internal/portal"
)

var configEnvVars = []string{
	"PAKETOMAT_PORTAL_BASE_URL",
	"PAKETOMAT_PORTAL_TRACKING_URL",
	"PAKETOMAT_PORTAL_USERNAME",
	"PAKETOMAT_PORTAL_PASSWORD",
	"PAKETOMAT_PORTAL_TIMEOUT",
	"PAKETOMAT_PORTAL_USER_AGENT",
	"PAKETOMAT_PORTAL_PRINTER_NAME",
	"PAKETOMAT_LABEL_GHOSTSCRIPT_PATH",
	"PAKETOMAT_LABEL_WIDTH",
	"PAKETOMAT_LABEL_HEIGHT",
	"PAKETOMAT_LABEL_RESOLUTION",
	"PAKETOMAT_SERVER_HOST",
	"PAKETOMAT_SERVER_PORT",
	"PAKETOMAT_SERVER_API_KEY",
	"PAKETOMAT_CACHE_DISABLED",
	"PAKETOMAT_CACHE_TTL",
	"PAKETOMAT_LOGGING_LEVEL",
	"PAKETOMAT_OUTPUT_FORMAT",
}

// isolate clears config variables and runs the test from an empty directory
// so no stray paketomat.yaml is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadWithViper_Defaults(t *testing.T) {
	isolate(t)

	config, err := LoadWithViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, portal.DefaultBaseURL, config.PortalBaseURL)
	assert.Equal(t, portal.DefaultTrackingURL, config.PortalTrackingURL)
	assert.Equal(t, 30*time.Second, config.PortalTimeout)
	assert.Equal(t, portal.DefaultPrinterName, config.PortalPrinterName)
	assert.Equal(t, "gs", config.GhostscriptPath)
	assert.Equal(t, 800, config.LabelWidth)
	assert.Equal(t, 1200, config.LabelHeight)
	assert.Equal(t, 203, config.LabelResolution)
	assert.Equal(t, "localhost:8080", config.Address())
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "table", config.OutputFormat)
	assert.Equal(t, 5*time.Minute, config.EffectiveCacheTTL())

	assert.Error(t, config.RequireCredentials())
}

func TestLoadWithViper_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("PAKETOMAT_PORTAL_BASE_URL", "https://portal.test")
	t.Setenv("PAKETOMAT_PORTAL_USERNAME", "12345")
	t.Setenv("PAKETOMAT_PORTAL_PASSWORD", "secret")
	t.Setenv("PAKETOMAT_PORTAL_TIMEOUT", "5s")
	t.Setenv("PAKETOMAT_LABEL_WIDTH", "400")
	t.Setenv("PAKETOMAT_SERVER_PORT", "9090")
	t.Setenv("PAKETOMAT_SERVER_API_KEY", "token")
	t.Setenv("PAKETOMAT_CACHE_DISABLED", "true")
	t.Setenv("PAKETOMAT_LOGGING_LEVEL", "debug")
	t.Setenv("PAKETOMAT_OUTPUT_FORMAT", "json")

	config, err := LoadWithViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://portal.test", config.PortalBaseURL)
	assert.Equal(t, 5*time.Second, config.PortalTimeout)
	assert.Equal(t, 400, config.LabelWidth)
	assert.Equal(t, "9090", config.ServerPort)
	assert.Equal(t, "token", config.ServerAPIKey)
	assert.Equal(t, time.Duration(0), config.EffectiveCacheTTL())
	assert.Equal(t, "json", config.OutputFormat)
	assert.NoError(t, config.RequireCredentials())

	pc := config.PortalConfig()
	assert.Equal(t, "https://portal.test", pc.BaseURL)
	assert.Equal(t, 5*time.Second, pc.Timeout)
}

func TestLoadWithFile_YAML(t *testing.T) {
	isolate(t)

	configFile := filepath.Join(t.TempDir(), "paketomat.yaml")
	content := `portal:
  username: "12345"
  password: "from-file"
  printer_name: "Zebra"
label:
  resolution: 300
server:
  host: 0.0.0.0
  port: 8888
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	config, err := LoadWithFile(configFile)
	require.NoError(t, err)

	assert.Equal(t, "12345", config.PortalUsername)
	assert.Equal(t, "Zebra", config.PortalPrinterName)
	assert.Equal(t, 300, config.LabelOptions().Resolution)
	assert.Equal(t, "0.0.0.0:8888", config.Address())
}

func TestLoadWithFile_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv("PAKETOMAT_PORTAL_PASSWORD", "from-env")

	configFile := filepath.Join(t.TempDir(), "paketomat.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("portal:\n  password: from-file\n"), 0o600))

	config, err := LoadWithFile(configFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", config.PortalPassword)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("paketomat.yaml", []byte("logging:\n  level: warn\n"), 0o600))

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestLoadWithFile_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWithViper_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non http base url", "PAKETOMAT_PORTAL_BASE_URL", "ftp://portal.test"},
		{"base url without host", "PAKETOMAT_PORTAL_BASE_URL", "http://"},
		{"bad timeout", "PAKETOMAT_PORTAL_TIMEOUT", "soon"},
		{"zero timeout", "PAKETOMAT_PORTAL_TIMEOUT", "0s"},
		{"bad port", "PAKETOMAT_SERVER_PORT", "http"},
		{"port out of range", "PAKETOMAT_SERVER_PORT", "70000"},
		{"bad log level", "PAKETOMAT_LOGGING_LEVEL", "verbose"},
		{"bad format", "PAKETOMAT_OUTPUT_FORMAT", "xml"},
		{"bad label width", "PAKETOMAT_LABEL_WIDTH", "-1"},
		{"negative cache ttl", "PAKETOMAT_CACHE_TTL", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadWithViper(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	for level, want := range map[string]string{"debug": "DEBUG", "info": "INFO", "warn": "WARN", "error": "ERROR"} {
		c := &Config{LogLevel: level}
		assert.Equal(t, want, c.SlogLevel().String())
	}
}

func TestLoadEnvFile(t *testing.T) {
	isolate(t)
	t.Setenv("PAKETOMAT_PORTAL_PASSWORD", "already-set")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "# portal login\n" +
		"PAKETOMAT_PORTAL_USERNAME=\"12345\"\n" +
		"export PAKETOMAT_PORTAL_PRINTER_NAME='Zebra'\n" +
		"PAKETOMAT_PORTAL_PASSWORD=from-file\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	require.NoError(t, LoadEnvFile(envFile))
	t.Cleanup(func() {
		os.Unsetenv("PAKETOMAT_PORTAL_USERNAME")
		os.Unsetenv("PAKETOMAT_PORTAL_PRINTER_NAME")
	})

	assert.Equal(t, "12345", os.Getenv("PAKETOMAT_PORTAL_USERNAME"))
	assert.Equal(t, "Zebra", os.Getenv("PAKETOMAT_PORTAL_PRINTER_NAME"))
	assert.Equal(t, "already-set", os.Getenv("PAKETOMAT_PORTAL_PASSWORD"))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
