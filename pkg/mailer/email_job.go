package mailer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text(+HTML) must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "confirm_email" or "recovery_password"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrEmptyRecipient = errors.New("email job has no recipient")

// Compose resolves the final subject and bodies of a job, rendering its template when one is named.
func (j EmailJob) Compose() (subject, text, html string, err error) {
	if strings.TrimSpace(j.To) == "" {
		return "", "", "", ErrEmptyRecipient
	}
	if j.Template == "" {
		if j.Subject == "" || j.Text == "" {
			return "", "", "", fmt.Errorf("email job to %s: subject and text required without template", j.To)
		}
		return j.Subject, j.Text, j.HTML, nil
	}
	if !templates.Known(j.Template) {
		return "", "", "", fmt.Errorf("unknown email template %q", j.Template)
	}
	subject, text, html, err = templates.Render(j.Template, j.Data)
	if err != nil {
		return "", "", "", err
	}
	if j.Subject != "" {
		subject = j.Subject
	}
	return strings.TrimSpace(subject), text, html, nil
}
