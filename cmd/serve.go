package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-registration/catalog"
	"event-registration/config"
	"event-registration/controllers"
	"event-registration/driver"
	"event-registration/metrics"
	"event-registration/notify"
	"event-registration/ratelimit"
	"event-registration/receipts"
	"event-registration/services"
	"event-registration/session"
	"event-registration/store"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default 8000)")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}

	db, err := driver.ConnectDB(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := driver.MigrateUp(db); err != nil {
		return err
	}
	st := store.New(db)
	if err := st.SyncEvents(cmd.Context(), cat.Events); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var uploader receipts.Uploader
	if cfg.S3.Enabled() {
		s3store, err := receipts.NewS3(cfg.S3)
		if err != nil {
			return err
		}
		uploader = s3store
	}

	limitStore, err := ratelimit.NewStore(cfg.RedisURL)
	if err != nil {
		return err
	}

	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL)
	router, err := controllers.NewRouter(controllers.Deps{
		Store:        st,
		Catalog:      cat,
		Registration: services.NewRegistrationService(st, cat, m, log),
		Payments:     services.NewPaymentService(st, uploader, m, log),
		Admin:        services.NewAdminService(st, sessions, buildNotifier(cfg, cat), m, log),
		Sessions:     sessions,
		LimitStore:   limitStore,
		Limits: controllers.Limits{
			Default:  cfg.RateLimitDefault,
			Register: cfg.RateLimitRegister,
			Approve:  cfg.RateLimitApprove,
		},
		Gatherer: reg,
		Log:      log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"receipts": uploader != nil,
			"sms":      cfg.SMS.Enabled(),
		}).Info("server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildNotifier returns the e-mail notifier, fanned out with SMS when Twilio
// is configured.
func buildNotifier(c *config.Config, cat *catalog.Catalog) notify.Notifier {
	branding := notify.Branding{Title: cat.Title, Venue: cat.Venue}

	var channels notify.Multi
	if c.Mail.Enabled() {
		channels = append(channels, notify.NewEmail(c.Mail, branding))
	} else {
		log.Warn("MAIL_SERVER not set, approval e-mails are disabled")
	}
	if c.SMS.Enabled() {
		channels = append(channels, notify.NewSMS(c.SMS, branding))
	}

	switch len(channels) {
	case 0:
		return notify.Nop{}
	case 1:
		return channels[0]
	}
	return channels
}
