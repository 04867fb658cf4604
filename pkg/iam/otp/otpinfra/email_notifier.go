package otpinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/iam/otp"
	"github.com/Abraxas-365/quizcraft/pkg/notifx"
)

const (
	VerificationTemplate = "email_verification"
	VerificationSubject  = "Email Verification"
)

const verificationHTML = `<h1>Email Verification</h1>
<p>Hello,</p>
<p>Please use the following verification code to complete your sign-up:</p>
<h4>{{.Code}}</h4>
<p>The code is valid for {{.ValidFor}}. Don't share it with anyone!</p>
<p>Thank you for signing up!</p>
<p>Best Regards,</p>
<p>Quiz Craft Team</p>
`

// EmailNotifier mails the code synchronously through notifx.
type EmailNotifier struct {
	client   *notifx.Client
	validFor time.Duration
}

func NewEmailNotifier(client *notifx.Client, validFor time.Duration) (*EmailNotifier, error) {
	if err := client.RegisterTemplate(VerificationTemplate, verificationHTML); err != nil {
		return nil, err
	}
	return &EmailNotifier{client: client, validFor: validFor}, nil
}

var _ otp.NotificationService = (*EmailNotifier)(nil)

func (n *EmailNotifier) SendOTP(ctx context.Context, contact string, code string) error {
	data := struct {
		Code     string
		ValidFor string
	}{Code: code, ValidFor: humanDuration(n.validFor)}

	return n.client.SendTemplatedEmail(ctx, VerificationTemplate, data, notifx.EmailMessage{
		To:       []string{contact},
		Subject:  VerificationSubject,
		TextBody: "Your verification code is " + code,
	})
}

// humanDuration renders d in its largest whole unit, e.g. "2 minutes".
func humanDuration(d time.Duration) string {
	n, unit := int64(d/time.Second), "second"
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		n, unit = int64(d/time.Hour), "hour"
	case d >= time.Minute && d%time.Minute == 0:
		n, unit = int64(d/time.Minute), "minute"
	}
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
