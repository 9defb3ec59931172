package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Migrator == nil {
				return fmt.Errorf("migrate requires a database (not available with --memory)")
			}

			applied, err := app.Migrator.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}

			if applied == 0 {
				fmt.Fprintln(app.Out, "Database schema is up to date.")
			} else {
				fmt.Fprintf(app.Out, "✓ Applied %d migrations\n", applied)
			}
			return nil
		},
	}
}
