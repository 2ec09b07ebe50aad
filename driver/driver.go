package driver

import (
	"database/sql"
	"net"
	"strconv"
	"strings"
	"time"

	"event-registration/config"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// DSN builds the go-sql-driver connection string for the configured store.
func DSN(c config.DB) string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = true
	mc.TLSConfig = TLSMode(c.SSLMode)
	return mc.FormatDSN()
}

// TLSMode maps MySQL client ssl-mode names onto go-sql-driver tls values.
func TLSMode(sslMode string) string {
	switch sslMode {
	case "", "DISABLED":
		return "false"
	case "PREFERRED":
		return "preferred"
	case "REQUIRED":
		return "skip-verify"
	case "VERIFY_CA", "VERIFY_IDENTITY":
		return "true"
	default:
		return "false"
	}
}

func ConnectDB(c config.DB) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(c))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping database %s", c.Host)
	}
	return db, nil
}

// IsDuplicateKey reports whether err is a unique-key violation.
// MySQL reports 1062; SQLite's message is matched for the test store.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
