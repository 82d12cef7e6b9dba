package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const defaultSendTimeout = 10 * time.Second

// Mailgun delivers composed emails through the Mailgun HTTP API.
type Mailgun struct {
	Domain  string
	Sender  string
	Timeout time.Duration
	client  *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{
		Domain:  domain,
		Sender:  sender,
		Timeout: defaultSendTimeout,
		client:  mg.NewMailgun(domain, apiKey),
	}
}

// Send sends one message. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return nil
}

// Permanent reports whether retrying err cannot succeed: a job without a
// recipient, or a 4xx answer from Mailgun other than 429.
func Permanent(err error) bool {
	if errors.Is(err, ErrEmptyRecipient) {
		return true
	}
	var resp *mg.UnexpectedResponseError
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Actual >= 400 && resp.Actual < 500 && resp.Actual != http.StatusTooManyRequests
}
