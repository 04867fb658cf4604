package notifx

import (
	"context"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Sender identifies the default From of outgoing mail.
type Sender struct {
	Address string
	Name    string
}

// Client is the main entry point for sending notifications.
type Client struct {
	provider  EmailSender
	from      Sender
	templates *TemplateRegistry
}

// NewClient creates a new notification client.
func NewClient(provider EmailSender, from Sender) *Client {
	return &Client{
		provider:  provider,
		from:      from,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail validates msg, fills the default sender and hands it to the provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return ErrRegistry.New(CodeInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return ErrRegistry.New(CodeInvalidMessage).WithDetail("reason", "empty subject")
	}
	if msg.From == "" {
		msg.From = c.from.Address
		msg.FromName = c.from.Name
	}
	return c.provider.SendEmail(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template into the HTML body and sends it.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data any, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
