package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/roleplayhq/roleplay-backend/config"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
)

// Mailer delivers out-of-band notifications. The caller does not retry or
// confirm delivery.
type Mailer interface {
	SendPasswordReset(toEmail, token string) error
}

// New returns an SMTP-backed mailer, or a log-only mailer when SMTP is not
// configured (development mode).
func New(cfg *config.SMTPConfig) Mailer {
	if cfg.Host == "" || cfg.From == "" {
		logger.Warn("SMTP not configured, mail will only be logged", nil)
		return &logMailer{}
	}
	return &smtpMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		password: cfg.Password,
	}
}

type smtpMailer struct {
	host     string
	port     string
	from     string
	password string
}

func (m *smtpMailer) SendPasswordReset(toEmail, token string) error {
	subject := "Roleplay: Password Recovery"
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A password reset was requested for your account.\r\n"+
			"Use the code below within 2 hours to choose a new password:\r\n\r\n"+
			"    %s\r\n\r\n"+
			"If you did not request this, you can ignore this message.\r\n",
		token,
	)

	message := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, toEmail, subject, body,
	))

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.from, []string{toEmail}, message); err != nil {
		logger.Error("Failed to send password reset mail", err, map[string]interface{}{
			"to": toEmail,
		})
		return err
	}

	logger.Info("Password reset mail sent", map[string]interface{}{
		"to": toEmail,
	})
	return nil
}

// logMailer writes the token to the log instead of sending mail. Useful for
// local development and tests.
type logMailer struct{}

func (m *logMailer) SendPasswordReset(toEmail, token string) error {
	logger.Info("[DEV MODE] Password reset token", map[string]interface{}{
		"to":    toEmail,
		"token": token,
	})
	return nil
}

// NewLog returns the log-only mailer directly.
func NewLog() Mailer {
	return &logMailer{}
}
