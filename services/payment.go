package services

import (
	"context"
	"io"
	"strings"

	"event-registration/metrics"
	"event-registration/models"
	"event-registration/receipts"

	"github.com/sirupsen/logrus"
)

type PaymentStore interface {
	GetTeam(ctx context.Context, teamID string) (models.Team, error)
	SubmitPayment(ctx context.Context, teamID, transactionID, receiptURL string) error
}

// Upload is an optional payment screenshot sent with the reference.
type Upload struct {
	ContentType string
	Body        io.Reader
}

type PaymentSubmission struct {
	TransactionID string `validate:"required,max=128"`
	Receipt       *Upload
}

type PaymentService struct {
	store    PaymentStore
	uploader receipts.Uploader
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

// NewPaymentService wires the recorder. uploader may be nil, in which case
// receipts are not accepted.
func NewPaymentService(store PaymentStore, uploader receipts.Uploader, m *metrics.Metrics, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{store: store, uploader: uploader, metrics: m, log: log}
}

// Info returns the team data the payment page shows.
func (s *PaymentService) Info(ctx context.Context, teamID string) (models.Team, error) {
	return s.store.GetTeam(ctx, teamID)
}

// Submit stores the transaction reference once and moves the team to WAITING.
func (s *PaymentService) Submit(ctx context.Context, teamID string, sub PaymentSubmission) error {
	err := s.submit(ctx, teamID, sub)
	s.metrics.Payment(resultLabel(err))
	return err
}

func (s *PaymentService) submit(ctx context.Context, teamID string, sub PaymentSubmission) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}

	sub.TransactionID = strings.TrimSpace(sub.TransactionID)
	if err := validate.Struct(sub); err != nil {
		return models.Invalid(models.ErrValidation, "A valid transaction id is required")
	}
	if team.TransactionID != "" {
		return models.ErrAlreadySubmitted
	}

	var receiptURL string
	if sub.Receipt != nil {
		if s.uploader == nil {
			return models.Invalid(models.ErrValidation, "Receipt uploads are not enabled")
		}
		receiptURL, err = s.uploader.Upload(ctx, teamID, sub.Receipt.ContentType, sub.Receipt.Body)
		if err != nil {
			s.log.WithError(err).WithField("team_id", teamID).Warn("receipt upload failed")
			return models.Invalid(models.ErrValidation, "Receipt could not be stored")
		}
	}

	if err := s.store.SubmitPayment(ctx, teamID, sub.TransactionID, receiptURL); err != nil {
		if receiptURL != "" {
			s.discardReceipt(ctx, teamID, receiptURL)
		}
		return err
	}
	s.log.WithField("team_id", teamID).Info("payment submitted")
	return nil
}

// discardReceipt deletes an uploaded receipt whose reference was not stored.
func (s *PaymentService) discardReceipt(ctx context.Context, teamID, url string) {
	if err := s.uploader.Remove(context.WithoutCancel(ctx), url); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"team_id": teamID, "receipt": url}).Warn("orphaned receipt not removed")
	}
}
