package notify

import (
	"context"

	"event-registration/config"
	"event-registration/models"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMS texts a short confirmation to the team leader's phone through Twilio.
type SMS struct {
	from     string
	branding Branding
	api      messageCreator
}

func NewSMS(cfg config.SMS, branding Branding) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMS{from: cfg.From, branding: branding, api: client.Api}
}

func (s *SMS) Channel() string { return "sms" }

func (s *SMS) NotifyApproval(ctx context.Context, a models.Approval) error {
	if len(a.Members) == 0 || a.Members[0].Phone == "" {
		return errors.New("team leader has no phone number")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(a.Members[0].Phone)
	params.SetFrom(s.from)
	params.SetBody(s.branding.ComposeSMS(a))

	if _, err := s.api.CreateMessage(params); err != nil {
		return errors.Wrapf(err, "send sms for %s", a.Team.TeamID)
	}
	return nil
}
