package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	cliapi "paketomat/internal/cli"
	"paketomat/internal/config"
	"paketomat/internal/portal"
)

var (
	configFile string
	format     string
	quiet      bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paketomat",
	Short: "Command line client for the Paketomat shipping portal",
	Long: `Paketomat drives the carrier's shipping portal from the command line.
You can list sender identities, register recipients, resolve routes,
print parcel labels and look up or cancel shipped parcels.`,
	Version:      "1.0.0",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./paketomat.yaml or $HOME/paketomat.yaml)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")

	rootCmd.PersistentFlags().Lookup("format").DefValue = getEnvOrDefault("PAKETOMAT_OUTPUT_FORMAT", "table")
	rootCmd.RegisterFlagCompletionFunc("format", completeOutputFormat)
	rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml", "json", "toml")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// loadConfig reads the configuration and applies the global flags
func loadConfig() (*config.Config, *cliapi.OutputFormatter, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadWithFile(configFile)
	if err != nil {
		return nil, nil, err
	}
	if format != "" {
		cfg.OutputFormat = format
	}

	return cfg, cliapi.NewOutputFormatter(cfg.OutputFormat, quiet), nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// initializeClient loads configuration and logs in to the portal
func initializeClient(ctx context.Context) (*config.Config, *cliapi.OutputFormatter, *portal.Client, error) {
	cfg, formatter, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	if err := cfg.RequireCredentials(); err != nil {
		formatter.PrintError(err)
		return nil, nil, nil, err
	}

	logger := newLogger(cfg)
	client, err := cliapi.Spin("Logging in to the portal", noColor || quiet, func() (*portal.Client, error) {
		c, err := portal.NewClient(ctx, cfg.PortalConfig(), logger)
		if err != nil {
			return nil, err
		}
		if err := c.Login(ctx, cfg.PortalUsername, cfg.PortalPassword); err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		formatter.PrintError(err)
		return nil, nil, nil, err
	}

	return cfg, formatter, client, nil
}
