package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"event-registration/metrics"
	"event-registration/models"
	"event-registration/notify"
	"event-registration/session"
	"event-registration/store"
	"event-registration/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type AdminStore interface {
	FindAdmin(ctx context.Context, username string) (models.Admin, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) error
	SetAdminPassword(ctx context.Context, username, passwordHash string) error
	ListTeams(ctx context.Context) ([]models.TeamSummary, error)
	CountByStatus(ctx context.Context, status models.PaymentStatus) (int, error)
	Approve(ctx context.Context, teamID string) error
	ApprovalDetails(ctx context.Context, teamID string) (models.Approval, error)
}

type Credentials struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,max=72"`
}

type AdminService struct {
	store    AdminStore
	sessions *session.Manager
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewAdminService(store AdminStore, sessions *session.Manager, notifier notify.Notifier, m *metrics.Metrics, log logrus.FieldLogger) *AdminService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &AdminService{store: store, sessions: sessions, notifier: notifier, metrics: m, log: log}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// missingUserHash is compared against when the username does not exist so
// unknown and known usernames take the same time to reject.
func missingUserHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	return dummyHash
}

// Login checks the credentials and issues a session token.
func (s *AdminService) Login(ctx context.Context, c Credentials) (string, time.Time, error) {
	c.Username = strings.TrimSpace(c.Username)
	if err := validate.Struct(c); err != nil {
		return "", time.Time{}, models.ErrInvalidCredentials
	}

	admin, err := s.store.FindAdmin(ctx, c.Username)
	switch {
	case errors.Is(err, store.ErrAdminNotFound):
		utils.ComparePasswords(missingUserHash(), []byte(c.Password))
		return "", time.Time{}, models.ErrInvalidCredentials
	case err != nil:
		return "", time.Time{}, err
	}
	if !utils.ComparePasswords(admin.PasswordHash, []byte(c.Password)) {
		s.log.WithField("username", c.Username).Warn("admin login rejected")
		return "", time.Time{}, models.ErrInvalidCredentials
	}
	return s.sessions.Issue(admin.Username)
}

func (s *AdminService) Logout(token string) {
	s.sessions.Revoke(token)
}

// CreateAdmin hashes the password and stores a new admin, or replaces the
// password of an existing one when reset is set.
func (s *AdminService) CreateAdmin(ctx context.Context, c Credentials, reset bool) error {
	c.Username = strings.TrimSpace(c.Username)
	if err := validate.Struct(c); err != nil {
		return models.Invalid(models.ErrValidation, "username and password are required")
	}
	hash, err := utils.HashPassword(c.Password)
	if err != nil {
		return err
	}
	if reset {
		return s.store.SetAdminPassword(ctx, c.Username, hash)
	}
	return s.store.CreateAdmin(ctx, c.Username, hash)
}

// Dashboard lists every team newest first with approved and pending counts.
func (s *AdminService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return d, err
	}
	d.Teams = teams
	if d.Approved, err = s.store.CountByStatus(ctx, models.StatusApproved); err != nil {
		return d, err
	}
	if d.Pending, err = s.store.CountByStatus(ctx, models.StatusWaiting); err != nil {
		return d, err
	}
	return d, nil
}

// Approve marks a team's payment approved and then sends the confirmation.
// A delivery failure is logged; the approval stands.
func (s *AdminService) Approve(ctx context.Context, teamID string) error {
	err := s.store.Approve(ctx, teamID)
	s.metrics.Approval(resultLabel(err))
	if err != nil {
		return err
	}
	s.log.WithField("team_id", teamID).Info("payment approved")
	s.notify(ctx, teamID)
	return nil
}

// notifyTimeout bounds the confirmation once it no longer follows the request.
const notifyTimeout = 30 * time.Second

// notify runs detached from the request: a client disconnect after the
// approval commits does not cancel the confirmation.
func (s *AdminService) notify(parent context.Context, teamID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), notifyTimeout)
	defer cancel()

	log := s.log.WithField("team_id", teamID)
	channel := s.notifier.Channel()

	details, err := s.store.ApprovalDetails(ctx, teamID)
	if err != nil {
		s.metrics.Notification(channel, "error")
		log.WithError(err).Error("approval notification: load team")
		return
	}
	if err := s.notifier.NotifyApproval(ctx, details); err != nil {
		s.metrics.Notification(channel, "error")
		log.WithError(err).Warn("approval notification failed")
		return
	}
	s.metrics.Notification(channel, "ok")
}
