// Package testutil provides an in-memory SQLite store with the registration schema.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/require"
)

// Schema mirrors driver/migrations in SQLite dialect.
const Schema = `
CREATE TABLE events (
	event_name TEXT PRIMARY KEY,
	category TEXT NOT NULL CHECK (category IN ('technical', 'nontech', 'workshop')),
	max_participants INTEGER
);

CREATE TABLE teams (
	team_id TEXT PRIMARY KEY,
	team_name TEXT,
	leader_email TEXT NOT NULL,
	registration_type TEXT NOT NULL,
	member_count INTEGER NOT NULL,
	amount_paid INTEGER NOT NULL,
	transaction_id TEXT UNIQUE,
	receipt_url TEXT,
	payment_status TEXT NOT NULL DEFAULT 'UNPAID' CHECK (payment_status IN ('UNPAID', 'WAITING', 'APPROVED')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	team_id TEXT NOT NULL REFERENCES teams (team_id),
	student_id TEXT NOT NULL UNIQUE,
	member_name TEXT NOT NULL,
	study_year TEXT NOT NULL,
	department TEXT NOT NULL,
	college_name TEXT NOT NULL,
	phone TEXT NOT NULL,
	college_email TEXT NOT NULL
);

CREATE TABLE team_events (
	team_id TEXT NOT NULL REFERENCES teams (team_id),
	event_name TEXT NOT NULL,
	PRIMARY KEY (team_id, event_name)
);

CREATE TABLE workshop_registrations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id INTEGER NOT NULL REFERENCES members (id),
	workshop_name TEXT NOT NULL,
	UNIQUE (member_id, workshop_name)
);

CREATE TABLE admin (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);
`

// NewTestDB creates an in-memory SQLite database with the full schema.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}

// Count returns the number of rows in table.
func Count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
