package driver

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
)

type fakeMigrator struct {
	upErr    error
	stepsErr error
	closeErr error
	steps    int
	closed   int
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Steps(n int) error {
	f.steps = n
	return f.stepsErr
}

func (f *fakeMigrator) Close() (error, error) {
	f.closed++
	return nil, f.closeErr
}

func useMigrator(t *testing.T, m *fakeMigrator) {
	t.Helper()
	orig := openMigrator
	openMigrator = func(*sql.DB) (migrator, error) { return m, nil }
	t.Cleanup(func() { openMigrator = orig })
}

func TestMigrationsCloseMigrator(t *testing.T) {
	tests := []struct {
		name    string
		m       *fakeMigrator
		run     func() error
		wantErr string
	}{
		{"up", &fakeMigrator{}, func() error { return MigrateUp(nil) }, ""},
		{"up without changes", &fakeMigrator{upErr: migrate.ErrNoChange}, func() error { return MigrateUp(nil) }, ""},
		{"up failure", &fakeMigrator{upErr: errors.New("dirty database")}, func() error { return MigrateUp(nil) }, "migrate up: dirty database"},
		{"down", &fakeMigrator{}, func() error { return MigrateDown(nil, 2) }, ""},
		{"down failure", &fakeMigrator{stepsErr: errors.New("no migration")}, func() error { return MigrateDown(nil, 1) }, "migrate down: no migration"},
		{"close failure", &fakeMigrator{closeErr: errors.New("conn busy")}, func() error { return MigrateUp(nil) }, "close migration database: conn busy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useMigrator(t, tt.m)

			err := tt.run()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
			assert.Equal(t, 1, tt.m.closed)
		})
	}
}

func TestMigrateDownStepsBackwards(t *testing.T) {
	m := &fakeMigrator{}
	useMigrator(t, m)

	assert.NoError(t, MigrateDown(nil, 3))
	assert.Equal(t, -3, m.steps)
}
