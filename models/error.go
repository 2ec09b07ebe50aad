package models

import "github.com/pkg/errors"

type Error struct {
	Message string `json:"message"`
}

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidMemberCount  = errors.New("invalid participant count")
	ErrTeamRuleViolation   = errors.New("3 members allowed only for specific events")
	ErrWorkshopFull        = errors.New("workshop is full")
	ErrUnknownEvent        = errors.New("unknown event")
	ErrDuplicate           = errors.New("duplicate data detected")
	ErrTeamNotFound        = errors.New("team not found")
	ErrAlreadySubmitted    = errors.New("transaction already submitted")
	ErrAlreadyApproved     = errors.New("team already approved")
	ErrPaymentNotSubmitted = errors.New("payment not submitted yet")
	ErrInvalidCredentials  = errors.New("invalid admin credentials")
	ErrUnauthenticated     = errors.New("admin login required")
)

// ValidationError is a user-facing rejection raised before any write.
// It matches ErrValidation and its Reason under errors.Is.
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Detail
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func Invalid(reason error, detail string) error {
	return &ValidationError{Reason: reason, Detail: detail}
}
