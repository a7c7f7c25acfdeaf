package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"SentimentReporter/internal/config"
	"SentimentReporter/internal/ports"
)

// SMTPDeliverer sends HTML mail over implicit-TLS SMTP (port 465 style).
type SMTPDeliverer struct {
	host     string
	port     int
	from     string
	to       string
	password string
}

var _ ports.Deliverer = (*SMTPDeliverer)(nil)

// NewSMTPDeliverer wires the SMTP account from configuration.
func NewSMTPDeliverer(cfg config.EmailConfig) *SMTPDeliverer {
	return &SMTPDeliverer{
		host:     cfg.Host,
		port:     cfg.Port,
		from:     cfg.From,
		to:       cfg.To,
		password: cfg.Password,
	}
}

// Deliver sends one HTML message. The context bounds connection setup.
func (d *SMTPDeliverer) Deliver(ctx context.Context, subject, htmlBody string) error {
	if d.host == "" || d.from == "" || d.to == "" || d.password == "" {
		return fmt.Errorf("smtp deliverer misconfigured")
	}

	addr := fmt.Sprintf("%s:%d", d.host, d.port)
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: d.host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, d.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", d.from, d.password, d.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(d.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(d.to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write([]byte(d.buildMessage(subject, htmlBody))); err != nil {
		writer.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}

func (d *SMTPDeliverer) buildMessage(subject, htmlBody string) string {
	headers := []string{
		"From: " + d.from,
		"To: " + d.to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="utf-8"`,
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody
}
