package store

import (
	"context"

	"event-registration/driver"
	"event-registration/models"

	"github.com/pkg/errors"
)

// SubmitPayment records the transaction reference for a team and marks the
// payment as waiting for review. A reference is stored at most once.
func (s *Store) SubmitPayment(ctx context.Context, teamID, transactionID, receiptURL string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE teams SET transaction_id = ?, receipt_url = ?, payment_status = ?
		WHERE team_id = ? AND transaction_id IS NULL`,
		transactionID, nullString(receiptURL), string(models.StatusWaiting), teamID)
	if driver.IsDuplicateKey(err) {
		return models.ErrDuplicate
	}
	if err != nil {
		return errors.Wrapf(err, "submit payment for %s", teamID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "submit payment for %s", teamID)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return err
	}
	return models.ErrAlreadySubmitted
}
