package service

import (
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// Mailer sends review-moderation notifications over SMTP. A zero Host
// disables it.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.Host != "" && m.From != ""
}

// SendModerationNotice tells a reviewer that a moderator changed their
// review's status.
func (m *Mailer) SendModerationNotice(toEmail, reviewTitle, status, reason string) error {
	if !m.Enabled() {
		return nil
	}
	subject := "Your review was moderated"
	if reviewTitle != "" {
		subject = fmt.Sprintf("Your review %q was moderated", reviewTitle)
	}
	body := fmt.Sprintf("The status of your review is now %s.", status)
	if reason != "" {
		body += "\nReason: " + reason
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return d.DialAndSend(msg)
}
