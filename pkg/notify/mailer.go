// Package notify delivers the finished report by email.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends mail through an authenticated SMTP submission endpoint
// (STARTTLS is negotiated automatically on port 587).
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Message is one outbound report email: an HTML body with the workbook
// attached.
type Message struct {
	Recipients     []string
	Subject        string
	HTMLBody       string
	AttachmentPath string
}

// Send delivers the message. Failures are returned to the caller and are
// fatal for the run; the attachment stays on disk either way.
func (m *Mailer) Send(msg Message) error {
	if len(msg.Recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.Username)
	mail.SetHeader("To", msg.Recipients...)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", msg.HTMLBody)
	if msg.AttachmentPath != "" {
		mail.Attach(msg.AttachmentPath)
	}

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}
