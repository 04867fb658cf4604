package notifxsmtp

import (
	"context"

	"github.com/Abraxas-365/quizcraft/pkg/notifx"
	"gopkg.in/gomail.v2"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider sends mail through an authenticated SMTP relay such as Gmail.
type SMTPProvider struct {
	dialer Dialer
}

func NewSMTPProvider(host string, port int, username, password string) *SMTPProvider {
	return &SMTPProvider{dialer: gomail.NewDialer(host, port, username, password)}
}

// NewWithDialer is used by tests.
func NewWithDialer(d Dialer) *SMTPProvider {
	return &SMTPProvider{dialer: d}
}

func buildMessage(msg notifx.EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	if msg.FromName != "" {
		m.SetAddressHeader("From", msg.From, msg.FromName)
	} else {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}
	return m
}

// SendEmail blocks until the relay accepts the message. gomail has no
// context support, so ctx is only checked before dialing.
func (p *SMTPProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return notifx.ErrSendFailed(err).WithDetail("provider", "smtp")
	}
	if err := p.dialer.DialAndSend(buildMessage(msg)); err != nil {
		return notifx.ErrSendFailed(err).WithDetail("provider", "smtp")
	}
	return nil
}
