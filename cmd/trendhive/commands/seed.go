package commands

import (
	"trendhive/pkg/logger"

	"github.com/spf13/cobra"
)

// seedCmd loads the starter catalog and admin account
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalog",
	Long: `Load the starter catalog into an empty store and create the admin
account named by ADMIN_EMAIL and ADMIN_PASSWORD.

Examples:
  trendhive seed --store sqlite
  trendhive seed --env-file .env.local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, log, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := logger.WithContext(cmd.Context(), log)
		if err := a.Migrate(ctx); err != nil {
			return err
		}
		return a.Seed(ctx)
	},
}
