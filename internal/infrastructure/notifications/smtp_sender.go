package notifications

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"os"
	"strings"

	"safarpay/internal/usecase/interfaces"
)

// SMTPConfig holds delivery settings for the confirmation emails.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSMTPConfigFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USERNAME,
// SMTP_PASSWORD and DEFAULT_FROM_EMAIL.
func NewSMTPConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     getenvDefault("SMTP_HOST", "localhost"),
		Port:     getenvDefault("SMTP_PORT", "25"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getenvDefault("DEFAULT_FROM_EMAIL", "no-reply@safarpay.local"),
	}
}

// SMTPSender delivers messages over plain SMTP. Delivery errors are
// returned as-is; the caller owns retry policy.
type SMTPSender struct {
	cfg SMTPConfig
}

var _ interfaces.IEmailSender = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return err
	}

	log.Printf("[notification][smtp] sent recipient=%s subject=%q", to, subject)
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
