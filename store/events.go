package store

import (
	"context"
	"database/sql"

	"event-registration/models"

	"github.com/pkg/errors"
)

const workshopCount = `
	SELECT COUNT(*)
	FROM workshop_registrations wr
	JOIN members m ON wr.member_id = m.id
	WHERE wr.workshop_name = ?`

// WorkshopFull reports whether a workshop has reached its configured maximum.
// Workshops without a row or without a maximum never fill up.
func (s *Store) WorkshopFull(ctx context.Context, name string) (bool, error) {
	var limit sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT max_participants FROM events WHERE event_name = ? AND category = 'workshop'", name).Scan(&limit)
	if err == sql.ErrNoRows || (err == nil && !limit.Valid) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "workshop %s limit", name)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, workshopCount, name).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "workshop %s count", name)
	}
	return count >= limit.Int64, nil
}

// WorkshopSeats lists every workshop with its current enrolment.
func (s *Store) WorkshopSeats(ctx context.Context) ([]models.WorkshopSeats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.event_name, e.max_participants, COUNT(m.id)
		FROM events e
		LEFT JOIN workshop_registrations wr ON wr.workshop_name = e.event_name
		LEFT JOIN members m ON wr.member_id = m.id
		WHERE e.category = 'workshop'
		GROUP BY e.event_name, e.max_participants
		ORDER BY e.event_name`)
	if err != nil {
		return nil, errors.Wrap(err, "workshop seats")
	}
	defer rows.Close()

	var out []models.WorkshopSeats
	for rows.Next() {
		var (
			ws    models.WorkshopSeats
			limit sql.NullInt64
		)
		if err := rows.Scan(&ws.Name, &limit, &ws.Taken); err != nil {
			return nil, errors.Wrap(err, "scan workshop seats")
		}
		if limit.Valid {
			capacity := int(limit.Int64)
			remaining := capacity - ws.Taken
			if remaining < 0 {
				remaining = 0
			}
			ws.Max = &capacity
			ws.Remaining = &remaining
		}
		out = append(out, ws)
	}
	return out, errors.Wrap(rows.Err(), "workshop seats")
}

// SyncEvents makes the events table match the catalog entries. Events that are
// no longer in the catalog are left in place since teams may reference them.
func (s *Store) SyncEvents(ctx context.Context, events []models.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range events {
			var limit sql.NullInt64
			if e.MaxParticipants != nil {
				limit = sql.NullInt64{Int64: int64(*e.MaxParticipants), Valid: true}
			}

			var n int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE event_name = ?", e.Name).Scan(&n); err != nil {
				return errors.Wrapf(err, "lookup event %s", e.Name)
			}
			var err error
			if n == 0 {
				_, err = tx.ExecContext(ctx,
					"INSERT INTO events (event_name, category, max_participants) VALUES (?, ?, ?)",
					e.Name, string(e.Category), limit)
			} else {
				_, err = tx.ExecContext(ctx,
					"UPDATE events SET category = ?, max_participants = ? WHERE event_name = ?",
					string(e.Category), limit, e.Name)
			}
			if err != nil {
				return errors.Wrapf(err, "sync event %s", e.Name)
			}
		}
		return nil
	})
}
