package cmd

import (
	"os"
	"strings"

	"event-registration/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v   = viper.New()
	cfg *config.Config
	log = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:           "event-registration",
	Short:         "Team registration, payment tracking and approval for a college event",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v)
		if err != nil {
			return err
		}
		if err := configureLogger(log, c.LogLevel, c.LogFormat); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("catalog", "", "event catalog YAML file (default: built-in catalog)")
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("catalog_file", rootCmd.PersistentFlags().Lookup("catalog"))
}

func configureLogger(l *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("LOG_FORMAT: unknown format %q", format)
	}
	l.SetOutput(os.Stderr)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
