package commands

import (
	"context"
	"fmt"
	"os"

	"trendhive/internal/app"
	"trendhive/pkg/config"
	"trendhive/pkg/logger"
	"trendhive/prometheus"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "trendhive"

var (
	// Global flags
	envFile     string
	storeDriver string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trendhive",
	Short: "TrendHive fashion storefront API",
	Long: `TrendHive serves the storefront API: catalog, cart, wishlist, orders,
reviews, accounts and AI-assisted trend analysis with local fallbacks.

Configuration comes from environment variables, optionally loaded from a
.env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Override STORE_DRIVER (memory, postgres, sqlite, mongo)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// bootstrap loads configuration, initializes logging and metrics and wires
// the application
func bootstrap(ctx context.Context) (*app.App, *config.Config, *zap.Logger, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if storeDriver != "" {
		if err := os.Setenv("STORE_DRIVER", storeDriver); err != nil {
			return nil, nil, nil, err
		}
	}

	cfg, err := config.Load(serviceName, files...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	prometheus.InitMetrics(cfg)

	a, err := app.New(logger.WithContext(ctx, log), cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, cfg, log, nil
}
