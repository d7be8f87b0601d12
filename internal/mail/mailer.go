// Package mail sends the password-reset and confirmation emails over
// SMTP. When no SMTP host is configured the notifier degrades to
// logging, which keeps local development working without a relay.
package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/univdir/universities-api/internal/config"

	"github.com/dajohi/goemail"
)

// Notifier is the surface the auth service needs for the reset flow.
type Notifier interface {
	SendResetToken(recipient, name, token string) error
	SendPasswordChanged(recipient, name string) error
}

type SMTPNotifier struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	logger      *slog.Logger
}

func NewNotifier(cfg *config.Config, logger *slog.Logger) (Notifier, error) {
	if cfg.SMTPHost == "" {
		logger.Info("smtp disabled, password emails will only be logged")
		return &LogNotifier{logger: logger}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	u, err := url.Parse(h)
	if err != nil {
		return nil, fmt.Errorf("parse smtp host: %w", err)
	}

	tlsConfig := &tls.Config{}
	if cfg.MailSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}

	logger.Info("smtp client initialized", "host", cfg.SMTPHost, "from", cfg.MailAddress)
	return &SMTPNotifier{
		smtp:        smtp,
		mailName:    cfg.MailName,
		mailAddress: cfg.MailAddress,
		logger:      logger,
	}, nil
}

func (n *SMTPNotifier) SendResetToken(recipient, name, token string) error {
	body, err := renderResetBody(name, token)
	if err != nil {
		return err
	}
	return n.send(recipient, resetSubject, body)
}

func (n *SMTPNotifier) SendPasswordChanged(recipient, name string) error {
	body, err := renderChangedBody(name)
	if err != nil {
		return err
	}
	return n.send(recipient, changedSubject, body)
}

func (n *SMTPNotifier) send(recipient, subject, body string) error {
	msg := goemail.NewMessage(n.mailAddress, subject, body)
	msg.SetName(n.mailName)
	msg.AddTo(recipient)
	if err := n.smtp.Send(msg); err != nil {
		return fmt.Errorf("send %q to %v: %w", subject, recipient, err)
	}
	return nil
}

// LogNotifier stands in for SMTP in development and tests.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendResetToken(recipient, name, token string) error {
	n.logger.Info("password reset token issued",
		"recipient", recipient,
		"name", name,
		"token", token,
	)
	return nil
}

func (n *LogNotifier) SendPasswordChanged(recipient, name string) error {
	n.logger.Info("password changed notification",
		"recipient", recipient,
		"name", name,
	)
	return nil
}
