package mail

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendOTP mails the plaintext verification code. The code is never
// persisted, so a failed send means the caller has to request a new one.
func (m *Mailer) SendOTP(ctx context.Context, email, code string) error {
	subject := "OTP verification From Task Management Tool"
	html := fmt.Sprintf(`<p>Your OTP is <span style="color:brown">%s</span></p>`, code)
	return m.send(ctx, email, subject, html)
}

// SendTaskReminder nudges an assignee about a still-open task.
func (m *Mailer) SendTaskReminder(ctx context.Context, email, taskTitle string) error {
	subject := "Task Reminder"
	html := fmt.Sprintf("<p>Your task is pending: %s</p>", taskTitle)
	return m.send(ctx, email, subject, html)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil || m.dialer == nil {
		return errors.New("mailer not configured")
	}
	if m.dialer.Host == "" {
		return errors.New("mailer missing SMTP host")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
