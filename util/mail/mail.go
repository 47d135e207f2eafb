package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends account mail over SMTP. It satisfies the user service's
// Notifier interface; when no SMTP host is configured it is a no-op so dev
// environments do not need a mail server.
type Mailer struct {
	host     string
	port     int
	login    string
	password string
}

func New(host string, port int, login, password string) *Mailer {
	return &Mailer{host: host, port: port, login: login, password: password}
}

func (m *Mailer) AccountCreated(ctx context.Context, email, login, password string) error {
	if m.host == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.login)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your library account")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your account has been created\nData for authorization\nLogin: %s,\nPassword: %s", login, password))

	d := gomail.NewDialer(m.host, m.port, m.login, m.password)
	return d.DialAndSend(msg)
}
