package notifxsmtp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/notifx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPProvider_SendsHTML(t *testing.T) {
	d := &fakeDialer{}
	p := NewWithDialer(d)

	err := p.SendEmail(context.Background(), notifx.EmailMessage{
		From:     "noreply@quizcraft.dev",
		To:       []string{"a@example.com"},
		Subject:  "Email Verification",
		HTMLBody: "<p>code</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"Email Verification"}, d.sent[0].GetHeader("Subject"))
	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestSMTPProvider_WrapsDialError(t *testing.T) {
	p := NewWithDialer(&fakeDialer{err: errors.New("535 auth failed")})

	err := p.SendEmail(context.Background(), notifx.EmailMessage{From: "a@b.c", To: []string{"d@e.f"}, Subject: "s", TextBody: "x"})
	assert.True(t, errx.IsCode(err, notifx.CodeSendFailed))
}
