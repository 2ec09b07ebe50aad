package services

import (
	"event-registration/models"

	"github.com/pkg/errors"
)

// resultLabel buckets an outcome for the metrics counters.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, models.ErrTeamNotFound):
		return "not_found"
	case errors.Is(err, models.ErrAlreadySubmitted),
		errors.Is(err, models.ErrAlreadyApproved),
		errors.Is(err, models.ErrPaymentNotSubmitted):
		return "conflict"
	case errors.Is(err, models.ErrInvalidCredentials):
		return "denied"
	}
	return "error"
}
