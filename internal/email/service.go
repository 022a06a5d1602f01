package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinica-api/internal/config"
)

// Notifier delivers account credentials out of band. Delivery is best
// effort; callers must not fail the request when it errors.
type Notifier interface {
	SendTempPassword(ctx context.Context, to, name, password string) error
}

type smtpNotifier struct {
	cfg config.SMTPConfig
}

// NewNotifier returns an SMTP-backed notifier, or a no-op one when no
// SMTP host is configured.
func NewNotifier(cfg config.SMTPConfig) Notifier {
	if cfg.Host == "" {
		return &noopNotifier{}
	}
	return &smtpNotifier{cfg: cfg}
}

func (n *smtpNotifier) SendTempPassword(ctx context.Context, to, name, password string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your account credentials")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nAn account has been created for you. Your temporary password is:\n\n    %s\n\nYou will be asked to change it on first login.\n",
		name, password,
	))

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	return d.DialAndSend(m)
}

type noopNotifier struct{}

func (n *noopNotifier) SendTempPassword(ctx context.Context, to, name, password string) error {
	return nil
}
