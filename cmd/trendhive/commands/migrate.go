package commands

import (
	"trendhive/pkg/logger"

	"github.com/spf13/cobra"
)

// migrateCmd creates tables or indexes for the configured store
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the store schema",
	Long: `Create tables (postgres, sqlite) or indexes (mongo) for the configured
store. Running it again is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, log, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Migrate(logger.WithContext(cmd.Context(), log))
	},
}
