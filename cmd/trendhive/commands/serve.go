package commands

import (
	"context"
	"os/signal"
	"syscall"

	"trendhive/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveMigrate bool

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until interrupted.

The store is migrated first unless --migrate=false, and the starter catalog
is seeded into an empty store when SHOP_SEED_ON_START is true.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Migrate the store before serving")
}

func runServe(ctx context.Context) error {
	a, cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("Failed to close resources", zap.Error(err))
		}
		_ = log.Sync()
	}()

	ctx = logger.WithContext(ctx, log)
	if serveMigrate {
		if err := a.Migrate(ctx); err != nil {
			return err
		}
	}
	if cfg.Shop.SeedOnStart {
		if err := a.Seed(ctx); err != nil {
			return err
		}
	}
	return a.Run(ctx)
}
