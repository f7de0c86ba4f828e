package utils

import (
	"fmt"
	"time"

	"cloudgreet/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional notification emails over SMTP
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewMailer() *Mailer {
	return &Mailer{
		host:     config.AppConfig.SMTPHost,
		port:     config.AppConfig.SMTPPort,
		username: config.AppConfig.SMTPUsername,
		password: config.AppConfig.SMTPPassword,
		from:     config.AppConfig.FromEmail,
	}
}

// Enabled reports whether SMTP is configured. When it isn't, notification
// sends become no-ops instead of errors.
func (m *Mailer) Enabled() bool {
	return m.host != ""
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	if !m.Enabled() {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	return nil
}

// SendFollowUpNotification tells a rep about a newly scheduled follow-up task.
func (m *Mailer) SendFollowUpNotification(to, prospectName string, dueAt time.Time) error {
	subject := fmt.Sprintf("Follow-up scheduled: %s", prospectName)
	body := fmt.Sprintf(
		"<p>A follow-up with <strong>%s</strong> is due at %s.</p>",
		prospectName,
		dueAt.Format(time.RFC1123),
	)
	return m.Send(to, subject, body)
}
