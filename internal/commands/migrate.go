package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/bizledger/pkg/database"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply pending migrations, or revert the latest one",
		Args:  cobra.MaximumNArgs(1),
		ValidArgs: []string{
			string(database.MigrateUp),
			string(database.MigrateDown),
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := database.MigrateUp
			if len(args) == 1 {
				direction = database.MigrateDirection(args[0])
			}
			if direction != database.MigrateUp && direction != database.MigrateDown {
				return fmt.Errorf("unknown direction %q", direction)
			}
			if rt.cfg.UsesMemoryStorage() || rt.cfg.DatabaseURL == "" {
				return fmt.Errorf("migrations need the postgres backend and PGSQL_URL")
			}

			changed, err := database.RunMigrations(rt.cfg.DatabaseURL, rt.cfg.MigrationsPath, direction)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations to apply.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s).\n", direction)
			return nil
		},
	}
	return cmd
}
