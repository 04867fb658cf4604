package notifxconsole

import (
	"context"
	"strings"

	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/Abraxas-365/quizcraft/pkg/notifx"
)

// ConsoleProvider logs emails instead of sending them. Development only.
type ConsoleProvider struct {
	logger *logx.Logger
}

func NewConsoleProvider(logger *logx.Logger) *ConsoleProvider {
	if logger == nil {
		logger = logx.GetDefaultLogger()
	}
	return &ConsoleProvider{logger: logger}
}

func (p *ConsoleProvider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	entry := p.logger.WithFields(logx.Fields{
		"from":    msg.From,
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
	})
	if msg.TextBody != "" {
		entry.WithField("text", msg.TextBody)
	}
	entry.Info("notifx/console: email sent (dev mode)")

	if msg.HTMLBody != "" {
		p.logger.WithField("to", strings.Join(msg.To, ", ")).Debugf("notifx/console: html body:\n%s", msg.HTMLBody)
	}
	return nil
}
