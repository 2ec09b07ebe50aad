package notify

import (
	"context"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"event-registration/config"
	"event-registration/models"

	"github.com/pkg/errors"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends approval messages to the team leader through an SMTP relay.
type Email struct {
	cfg      config.Mail
	branding Branding
	send     sendMailFunc
}

func NewEmail(cfg config.Mail, branding Branding) *Email {
	return &Email{cfg: cfg, branding: branding, send: smtp.SendMail}
}

func (e *Email) Channel() string { return "email" }

func (e *Email) NotifyApproval(ctx context.Context, a models.Approval) error {
	if a.Team.LeaderEmail == "" {
		return errors.New("team has no leader email")
	}
	body, err := e.branding.ComposeApproval(a)
	if err != nil {
		return errors.Wrap(err, "compose approval")
	}

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Server)
	}
	addr := net.JoinHostPort(e.cfg.Server, strconv.Itoa(e.cfg.Port))
	msg := buildMessage(e.cfg.Sender, a.Team.LeaderEmail, e.branding.Subject(), body)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.send(addr, auth, e.cfg.Sender, []string{a.Team.LeaderEmail}, msg); err != nil {
		return errors.Wrapf(err, "send mail to %s", a.Team.LeaderEmail)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
