package cmd

import (
	"os"

	"event-registration/driver"
	"event-registration/services"
	"event-registration/session"
	"event-registration/store"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an admin, or reset its password with --reset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().String("password", "", "admin password (default: $ADMIN_PASSWORD)")
	adminCreateCmd.Flags().Bool("reset", false, "replace the password of an existing admin")
	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		return errors.New("a password is required (--password or ADMIN_PASSWORD)")
	}
	reset, _ := cmd.Flags().GetBool("reset")

	db, err := driver.ConnectDB(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := services.NewAdminService(store.New(db), session.NewManager(cfg.SecretKey, cfg.SessionTTL), nil, nil, log)
	err = svc.CreateAdmin(cmd.Context(), services.Credentials{Username: args[0], Password: password}, reset)
	if errors.Is(err, store.ErrAdminNotFound) {
		return errors.Errorf("admin %q does not exist, run without --reset", args[0])
	}
	if err != nil {
		return err
	}
	log.WithField("username", args[0]).Info("admin saved")
	return nil
}
