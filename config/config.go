package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Port       string
	SecretKey  string
	SessionTTL time.Duration

	DB   DB
	Mail Mail
	SMS  SMS
	S3   S3

	RedisURL          string
	RateLimitDefault  string
	RateLimitRegister string
	RateLimitApprove  string

	CatalogFile string
	LogLevel    string
	LogFormat   string
}

type DB struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Mail struct {
	Server   string
	Port     int
	Username string
	Password string
	Sender   string
}

// Enabled reports whether a mail relay is configured.
func (m Mail) Enabled() bool { return m.Server != "" }

type SMS struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (s SMS) Enabled() bool { return s.AccountSID != "" && s.AuthToken != "" && s.From != "" }

type S3 struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

func (s S3) Enabled() bool { return s.Bucket != "" && s.Region != "" }

// SetDefaults registers the default value of every key so AutomaticEnv can
// resolve them from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("secret_key", "")
	v.SetDefault("session_ttl", "8h")

	v.SetDefault("mysql_host", "127.0.0.1")
	v.SetDefault("mysql_port", 3306)
	v.SetDefault("mysql_user", "root")
	v.SetDefault("mysql_password", "")
	v.SetDefault("mysql_db", "nexovate")
	v.SetDefault("mysql_ssl_mode", "")

	v.SetDefault("mail_server", "smtp.gmail.com")
	v.SetDefault("mail_port", 587)
	v.SetDefault("mail_username", "")
	v.SetDefault("mail_password", "")
	v.SetDefault("mail_default_sender", "")

	v.SetDefault("twilio_account_sid", "")
	v.SetDefault("twilio_auth_token", "")
	v.SetDefault("twilio_from_number", "")

	v.SetDefault("aws_region", "")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("receipts_bucket", "")

	v.SetDefault("redis_url", "memory://")
	v.SetDefault("rate_limit_default", "100-M")
	v.SetDefault("rate_limit_register", "10-M")
	v.SetDefault("rate_limit_approve", "20-M")

	v.SetDefault("catalog_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads .env (when present) and the process environment.
func Load(v *viper.Viper) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:      v.GetString("port"),
		SecretKey: v.GetString("secret_key"),
		DB: DB{
			Host:     v.GetString("mysql_host"),
			Port:     v.GetInt("mysql_port"),
			User:     v.GetString("mysql_user"),
			Password: v.GetString("mysql_password"),
			Name:     v.GetString("mysql_db"),
			SSLMode:  strings.ToUpper(strings.TrimSpace(v.GetString("mysql_ssl_mode"))),
		},
		Mail: Mail{
			Server:   v.GetString("mail_server"),
			Port:     v.GetInt("mail_port"),
			Username: v.GetString("mail_username"),
			Password: v.GetString("mail_password"),
			Sender:   v.GetString("mail_default_sender"),
		},
		SMS: SMS{
			AccountSID: v.GetString("twilio_account_sid"),
			AuthToken:  v.GetString("twilio_auth_token"),
			From:       v.GetString("twilio_from_number"),
		},
		S3: S3{
			Region:          v.GetString("aws_region"),
			AccessKeyID:     v.GetString("aws_access_key_id"),
			SecretAccessKey: v.GetString("aws_secret_access_key"),
			Bucket:          v.GetString("receipts_bucket"),
		},
		RedisURL:          v.GetString("redis_url"),
		RateLimitDefault:  v.GetString("rate_limit_default"),
		RateLimitRegister: v.GetString("rate_limit_register"),
		RateLimitApprove:  v.GetString("rate_limit_approve"),
		CatalogFile:       v.GetString("catalog_file"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
	}

	ttl, err := time.ParseDuration(v.GetString("session_ttl"))
	if err != nil {
		return nil, errors.Wrap(err, "SESSION_TTL")
	}
	cfg.SessionTTL = ttl

	if cfg.Mail.Sender == "" {
		cfg.Mail.Sender = cfg.Mail.Username
	}
	return cfg, nil
}

// Validate checks the settings the HTTP server cannot start without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY variable is not set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.DB.Name == "" {
		return errors.New("MYSQL_DB variable is not set")
	}
	return nil
}
