package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

var ErrNoRecipients = errors.New("notification: no recipients")

// Gateway delivers an HTML message. A nil error means the message was handed off.
type Gateway interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPGateway sends mail through an SMTP relay with PLAIN auth over STARTTLS.
type SMTPGateway struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPGateway(cfg SMTPConfig) *SMTPGateway {
	return &SMTPGateway{cfg: cfg, send: smtp.SendMail}
}

func (g *SMTPGateway) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if g.cfg.Username != "" {
		auth = smtp.PlainAuth("", g.cfg.Username, g.cfg.Password, g.cfg.Host)
	}

	addr := net.JoinHostPort(g.cfg.Host, strconv.Itoa(g.cfg.Port))
	if err := g.send(addr, auth, g.cfg.From, to, buildMessage(g.cfg.From, to, subject, htmlBody)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

func buildMessage(from string, to []string, subject, htmlBody string) []byte {
	var b bytes.Buffer
	b.WriteString("From: " + headerSanitizer.Replace(from) + "\r\n")
	b.WriteString("To: " + headerSanitizer.Replace(strings.Join(to, ", ")) + "\r\n")
	b.WriteString("Subject: " + headerSanitizer.Replace(subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.Bytes()
}

// LogGateway writes messages to the log instead of delivering them.
type LogGateway struct {
	log *slog.Logger
}

func NewLogGateway(log *slog.Logger) *LogGateway {
	return &LogGateway{log: log}
}

func (g *LogGateway) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	g.log.InfoContext(ctx, "Email not sent, no SMTP host configured",
		slog.Any("to", to),
		slog.String("subject", subject),
		slog.String("body", htmlBody),
	)
	return nil
}

var (
	otpTemplate = template.Must(template.New("otp").Parse(
		`<html><body><p>Your verification code is <strong>{{.Code}}</strong>.</p>` +
			`<p>It expires in {{.Minutes}} minutes.</p></body></html>`))

	invitationTemplate = template.Must(template.New("invitation").Parse(
		`<html><body><p>{{.Inviter}} invited you to {{.Project}}.</p>` +
			`<p>Sign in to accept or decline the invitation.</p></body></html>`))
)

// OTPBody renders the verification-code email.
func OTPBody(code int, ttl time.Duration) (string, error) {
	var b bytes.Buffer
	err := otpTemplate.Execute(&b, struct {
		Code    int
		Minutes int
	}{Code: code, Minutes: int(ttl.Minutes())})
	if err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return b.String(), nil
}

// InvitationBody renders "<inviter> invited you to <project>".
func InvitationBody(inviter, project string) (string, error) {
	var b bytes.Buffer
	err := invitationTemplate.Execute(&b, struct {
		Inviter string
		Project string
	}{Inviter: inviter, Project: project})
	if err != nil {
		return "", fmt.Errorf("render invitation email: %w", err)
	}
	return b.String(), nil
}
