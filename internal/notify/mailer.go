package notify

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/as0628/expense-tracker-project/internal/config"

	"github.com/sirupsen/logrus"
)

// Mailer sends one HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewMailer returns an SMTP mailer when a host is configured, otherwise a
// mailer that only logs.
func NewMailer(cfg config.MailConfig, log *logrus.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	msg := buildMessage(from, to, subject, htmlBody)
	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: \"Expense Tracker\" <" + from + ">\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	log *logrus.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("mail not sent: no smtp host configured")
	return nil
}

// PaymentEmail renders the premium activation email.
func PaymentEmail(msg PaymentSucceeded) (string, string) {
	subject := "Payment Successful - Premium Activated"
	body := fmt.Sprintf(`<h2>Payment Successful</h2>
<p>Thank you for your payment, %s.</p>
<p><b>Order ID:</b> %s</p>
<p><b>Amount:</b> %s</p>
<p>Your Premium Membership is now active.</p>`,
		html.EscapeString(msg.Name),
		html.EscapeString(msg.OrderID),
		html.EscapeString(msg.Amount),
	)
	return subject, body
}

// PasswordResetEmail renders the reset-link email.
func PasswordResetEmail(name, link string) (string, string) {
	subject := "Reset your password"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Use the link below to choose a new password. It works once.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not ask for this, ignore this email.</p>`,
		html.EscapeString(name),
		html.EscapeString(link),
	)
	return subject, body
}

// DirectNotifier mails the user in-process. Used when no broker is configured.
type DirectNotifier struct {
	mailer Mailer
}

func NewDirectNotifier(mailer Mailer) *DirectNotifier {
	return &DirectNotifier{mailer: mailer}
}

func (n *DirectNotifier) PaymentSucceeded(ctx context.Context, msg PaymentSucceeded) error {
	return Deliver(ctx, n.mailer, msg)
}

// Deliver sends the email for msg.
func Deliver(ctx context.Context, mailer Mailer, msg PaymentSucceeded) error {
	if msg.Email == "" {
		return fmt.Errorf("payment %s: no recipient", msg.OrderID)
	}
	subject, body := PaymentEmail(msg)
	return mailer.Send(ctx, msg.Email, subject, body)
}
