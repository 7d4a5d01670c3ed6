package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Email struct {
	Subject string
	Body    string
	From    string
	To      []string
}

type Mailer interface {
	SendMail(e *Email) error
}

type Mailgun struct {
	domain  string
	apiKey  string
	apiBase string
}

func NewMailer(domain, apiKey, apiBase string) *Mailgun {
	return &Mailgun{
		domain:  domain,
		apiKey:  apiKey,
		apiBase: apiBase,
	}
}

func (m *Mailgun) SendMail(e *Email) error {
	mg := mailgun.NewMailgun(m.domain, m.apiKey)
	mg.SetAPIBase(m.apiBase)

	message := mg.NewMessage(e.From, e.Subject, e.Body, e.To...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, _, err := mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun: %w", err)
	}

	return nil
}

// Discard drops every message. It stands in when Mailgun is not configured.
type Discard struct{}

func (Discard) SendMail(*Email) error {
	return nil
}

// NewApplicationEmail tells a project author that someone applied.
func NewApplicationEmail(from, authorEmail, projectTitle, applicantEmail string) *Email {
	return &Email{
		Subject: fmt.Sprintf("New application for %q", projectTitle),
		Body: fmt.Sprintf(
			"Hi,\n\n%s applied to your project %q on Mintern.\n\nSign in to review the application.\n",
			applicantEmail, projectTitle,
		),
		From: from,
		To:   []string{authorEmail},
	}
}
