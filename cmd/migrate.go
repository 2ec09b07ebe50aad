package cmd

import (
	"event-registration/driver"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := driver.ConnectDB(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := driver.MigrateUp(db); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")

		db, err := driver.ConnectDB(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := driver.MigrateDown(db, steps); err != nil {
			return err
		}
		log.WithField("steps", steps).Info("migrations rolled back")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
