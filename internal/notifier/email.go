package notifier

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email sends plain-text alerts over SMTP with STARTTLS auth, the way the
// usual mail relays (gmail and friends) expect.
type Email struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
}

func (e *Email) SendText(text string) error {
	if e.Host == "" || e.From == "" || len(e.To) == 0 {
		return fmt.Errorf("email notifier not configured")
	}
	port := e.Port
	if port == 0 {
		port = 587
	}
	subject := e.Subject
	if subject == "" {
		subject = "Signal Alert"
	}
	msg := strings.Join([]string{
		"From: " + e.From,
		"To: " + strings.Join(e.To, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		text,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", e.Host, port)
	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}
	if err := smtp.SendMail(addr, auth, e.From, e.To, []byte(msg)); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}
