package alerting

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"price-tracker/internal/report"
)

// EmailOptions parameterise the SMTP delivery channel.
type EmailOptions struct {
	Host     string
	Port     int
	Sender   string
	Password string
	Receiver string
}

// EmailNotifier sends the report as an HTML email over SMTP.
type EmailNotifier struct {
	opts   EmailOptions
	logger zerolog.Logger

	// send is swappable for tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier constructs an SMTP delivery channel.
func NewEmailNotifier(opts EmailOptions, logger zerolog.Logger) *EmailNotifier {
	if opts.Port <= 0 {
		opts.Port = 587
	}
	return &EmailNotifier{
		opts:   opts,
		logger: logger.With().Str("component", "alert_email").Logger(),
		send:   smtp.SendMail,
	}
}

// Notify sends the report to the configured receiver.
func (n *EmailNotifier) Notify(ctx context.Context, rpt report.Report) error {
	if n.opts.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	if n.opts.Sender == "" || n.opts.Receiver == "" {
		return fmt.Errorf("smtp sender and receiver required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if n.opts.Password != "" {
		auth = smtp.PlainAuth("", n.opts.Sender, n.opts.Password, n.opts.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.opts.Host, n.opts.Port)
	msg := buildMessage(n.opts.Sender, n.opts.Receiver, rpt)

	if err := n.send(addr, auth, n.opts.Sender, []string{n.opts.Receiver}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info().Str("to", n.opts.Receiver).Msg("report delivered (email)")
	return nil
}

func buildMessage(from, to string, rpt report.Report) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + rpt.Title + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(rpt.HTML)
	return []byte(b.String())
}

var _ Notifier = (*EmailNotifier)(nil)
