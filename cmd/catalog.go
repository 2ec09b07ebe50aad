package cmd

import (
	"event-registration/catalog"
	"event-registration/driver"
	"event-registration/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or load the event catalog",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Write the catalog's events and workshop capacities to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return err
		}

		db, err := driver.ConnectDB(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.New(db).SyncEvents(cmd.Context(), cat.Events); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"title": cat.Title, "events": len(cat.Events)}).Info("catalog synced")
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogSyncCmd)
	rootCmd.AddCommand(catalogCmd)
}
