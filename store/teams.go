package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"event-registration/driver"
	"event-registration/models"

	"github.com/pkg/errors"
)

const teamColumns = `team_id, team_name, leader_email, registration_type, member_count,
	amount_paid, transaction_id, receipt_url, payment_status, created_at`

// reserveWorkshop inserts a workshop seat only while the workshop is below its
// configured maximum, so the capacity check and the write are one statement.
const reserveWorkshop = `
INSERT INTO workshop_registrations (member_id, workshop_name)
SELECT ?, ? FROM (SELECT 1 AS one) AS seat
WHERE NOT EXISTS (
	SELECT 1 FROM events e
	WHERE e.event_name = ? AND e.category = 'workshop'
	  AND e.max_participants IS NOT NULL
	  AND e.max_participants <= (
		SELECT COUNT(*) FROM workshop_registrations wr
		JOIN members m ON wr.member_id = m.id
		WHERE wr.workshop_name = ?))`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (models.Team, error) {
	var (
		t         models.Team
		name      sql.NullString
		txnID     sql.NullString
		receipt   sql.NullString
		status    string
		createdAt scanTime
	)
	err := row.Scan(&t.TeamID, &name, &t.LeaderEmail, &t.RegistrationType, &t.MemberCount,
		&t.AmountPaid, &txnID, &receipt, &status, &createdAt)
	if err != nil {
		return t, err
	}
	t.TeamName = name.String
	t.TransactionID = txnID.String
	t.ReceiptURL = receipt.String
	t.PaymentStatus = models.PaymentStatus(status)
	t.CreatedAt = createdAt.Time
	return t, nil
}

func (s *Store) CountTeams(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM teams").Scan(&n)
	return n, errors.Wrap(err, "count teams")
}

func (s *Store) CountByStatus(ctx context.Context, status models.PaymentStatus) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM teams WHERE payment_status = ?", string(status)).Scan(&n)
	return n, errors.Wrapf(err, "count %s teams", status)
}

func (s *Store) TeamExists(ctx context.Context, teamID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM teams WHERE team_id = ?", teamID).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "check team id")
	}
	return n > 0, nil
}

func (s *Store) GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM teams WHERE team_id = ?", teamID)
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return t, models.ErrTeamNotFound
	}
	return t, errors.Wrapf(err, "get team %s", teamID)
}

// CreateTeam writes the team, its members, events and workshop seats in one
// transaction. Nothing is persisted unless every row is written.
func (s *Store) CreateTeam(ctx context.Context, t models.NewTeam) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO teams (team_id, team_name, leader_email, registration_type, member_count, amount_paid, payment_status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TeamID, nullString(t.TeamName), t.LeaderEmail, t.RegistrationType,
			len(t.Members), t.AmountPaid, string(models.StatusUnpaid), t.CreatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "insert team")
		}

		for i, m := range t.Members {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO members (team_id, student_id, member_name, study_year, department, college_name, phone, college_email)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				t.TeamID, StudentID(t.TeamID, i+1), m.Name, m.StudyYear, m.Department,
				m.CollegeName, m.Phone, m.CollegeEmail)
			if err != nil {
				return errors.Wrap(err, "insert member")
			}
			if m.Workshop == "" {
				continue
			}
			memberID, err := res.LastInsertId()
			if err != nil {
				return errors.Wrap(err, "member id")
			}
			res, err = tx.ExecContext(ctx, reserveWorkshop, memberID, m.Workshop, m.Workshop, m.Workshop)
			if err != nil {
				return errors.Wrap(err, "insert workshop registration")
			}
			if n, err := res.RowsAffected(); err != nil {
				return errors.Wrap(err, "workshop registration")
			} else if n == 0 {
				return models.Invalid(models.ErrWorkshopFull, fmt.Sprintf("%s workshop is full", m.Workshop))
			}
		}

		for _, ev := range t.Events {
			if _, err := tx.ExecContext(ctx, "INSERT INTO team_events (team_id, event_name) VALUES (?, ?)", t.TeamID, ev); err != nil {
				return errors.Wrap(err, "insert team event")
			}
		}
		return nil
	})
	if driver.IsDuplicateKey(err) {
		return models.ErrDuplicate
	}
	return err
}

// StudentID is the team-scoped member identifier, e.g. NX1A2B3C-02.
func StudentID(teamID string, seq int) string {
	return fmt.Sprintf("%s-%02d", teamID, seq)
}

// Approve moves a team from WAITING to APPROVED. It never reverses an approval.
func (s *Store) Approve(ctx context.Context, teamID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE teams SET payment_status = ? WHERE team_id = ? AND payment_status = ?",
		string(models.StatusApproved), teamID, string(models.StatusWaiting))
	if err != nil {
		return errors.Wrapf(err, "approve team %s", teamID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "approve team %s", teamID)
	}
	if n > 0 {
		return nil
	}

	t, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	switch t.PaymentStatus {
	case models.StatusApproved:
		return models.ErrAlreadyApproved
	case models.StatusUnpaid:
		return models.ErrPaymentNotSubmitted
	}
	return errors.Errorf("approve team %s: unexpected status %s", teamID, t.PaymentStatus)
}

// ListTeams returns every team newest first, with events, workshops and roster.
func (s *Store) ListTeams(ctx context.Context) ([]models.TeamSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+teamColumns+" FROM teams ORDER BY created_at DESC, team_id")
	if err != nil {
		return nil, errors.Wrap(err, "list teams")
	}
	var teams []models.TeamSummary
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan team")
		}
		teams = append(teams, models.TeamSummary{Team: t})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "list teams")
	}
	rows.Close()

	events, err := s.groupedNames(ctx, "SELECT team_id, event_name FROM team_events ORDER BY team_id, event_name")
	if err != nil {
		return nil, errors.Wrap(err, "list team events")
	}
	workshops, err := s.groupedNames(ctx, `
		SELECT DISTINCT m.team_id, wr.workshop_name
		FROM workshop_registrations wr
		JOIN members m ON wr.member_id = m.id
		ORDER BY m.team_id, wr.workshop_name`)
	if err != nil {
		return nil, errors.Wrap(err, "list workshops")
	}
	members, err := s.membersByTeam(ctx, "")
	if err != nil {
		return nil, err
	}

	for i := range teams {
		id := teams[i].TeamID
		teams[i].Events = events[id]
		teams[i].Workshops = workshops[id]
		teams[i].Members = members[id]
		teams[i].Summary = Summary(teams[i].Events, teams[i].Workshops)
	}
	return teams, nil
}

// Summary is the single-line events column of the dashboard.
func Summary(events, workshops []string) string {
	var parts []string
	if len(events) > 0 {
		parts = append(parts, strings.Join(events, ","))
	}
	if len(workshops) > 0 {
		parts = append(parts, "Workshops: "+strings.Join(workshops, ", "))
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " | ")
}

func (s *Store) groupedNames(ctx context.Context, query string, args ...any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var teamID, name string
		if err := rows.Scan(&teamID, &name); err != nil {
			return nil, err
		}
		out[teamID] = append(out[teamID], name)
	}
	return out, rows.Err()
}

// membersByTeam loads rosters ordered by student id; an empty teamID loads all teams.
func (s *Store) membersByTeam(ctx context.Context, teamID string) (map[string][]models.Member, error) {
	query := `SELECT m.id, m.team_id, m.student_id, m.member_name, m.study_year, m.department,
			m.college_name, m.phone, m.college_email, COALESCE(MIN(wr.workshop_name), '')
		FROM members m
		LEFT JOIN workshop_registrations wr ON wr.member_id = m.id`
	var args []any
	if teamID != "" {
		query += " WHERE m.team_id = ?"
		args = append(args, teamID)
	}
	query += ` GROUP BY m.id, m.team_id, m.student_id, m.member_name, m.study_year, m.department,
			m.college_name, m.phone, m.college_email
		ORDER BY m.team_id, m.student_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list members")
	}
	defer rows.Close()

	out := make(map[string][]models.Member)
	for rows.Next() {
		var (
			m  models.Member
			id string
		)
		if err := rows.Scan(&m.ID, &id, &m.StudentID, &m.Name, &m.StudyYear, &m.Department,
			&m.CollegeName, &m.Phone, &m.CollegeEmail, &m.Workshop); err != nil {
			return nil, errors.Wrap(err, "scan member")
		}
		out[id] = append(out[id], m)
	}
	return out, errors.Wrap(rows.Err(), "list members")
}

// ApprovalDetails gathers the data for the approval message of one team.
func (s *Store) ApprovalDetails(ctx context.Context, teamID string) (models.Approval, error) {
	var a models.Approval
	t, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return a, err
	}
	a.Team = t

	members, err := s.membersByTeam(ctx, teamID)
	if err != nil {
		return a, err
	}
	a.Members = members[teamID]

	events, err := s.groupedNames(ctx, "SELECT team_id, event_name FROM team_events WHERE team_id = ? ORDER BY event_name", teamID)
	if err != nil {
		return a, errors.Wrap(err, "team events")
	}
	a.Events = events[teamID]

	workshops, err := s.groupedNames(ctx, `
		SELECT DISTINCT m.team_id, wr.workshop_name
		FROM workshop_registrations wr
		JOIN members m ON wr.member_id = m.id
		WHERE m.team_id = ?
		ORDER BY wr.workshop_name`, teamID)
	if err != nil {
		return a, errors.Wrap(err, "team workshops")
	}
	a.Workshops = workshops[teamID]
	return a, nil
}
