// Package mailx is the outbound email boundary. Delivery is best-effort from
// the caller's point of view: invitation state never rolls back because an
// email bounced, since the invite link stays redeemable either way.
package mailx

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Message is a single outbound email. Link carries the invitation URL;
// Metadata is free-form template context for the mail body.
type Message struct {
	To       string
	Subject  string
	Link     string
	Metadata map[string]string
}

// Mailer delivers messages to an external mail system.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth // optional
}

// defaultSendTimeout bounds a delivery when the caller's context carries no
// deadline, so a hung relay cannot block an invite request forever.
const defaultSendTimeout = 30 * time.Second

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailx: recipient is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	if trip := msg.Metadata["trip_name"]; trip != "" {
		fmt.Fprintf(&b, "You have been invited to join %q.\r\n\r\n", trip)
	}
	fmt.Fprintf(&b, "Open this link to respond:\r\n%s\r\n", msg.Link)

	if err := m.deliver(ctx, msg.To, b.String()); err != nil {
		return fmt.Errorf("mailx: send to %s: %w", msg.To, err)
	}
	return nil
}

// deliver speaks SMTP over a connection whose deadline follows ctx. The
// stdlib smtp.SendMail dials without one, which is how a stuck relay used to
// wedge the caller.
func (m *SMTPMailer) deliver(ctx context.Context, to, body string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", m.Addr)
	if err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSendTimeout)
	}
	_ = conn.SetDeadline(deadline)

	host := m.Addr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if m.Auth != nil {
		if err := c.Auth(m.Auth); err != nil {
			return err
		}
	}

	if err := c.Mail(m.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(body)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// LogMailer writes deliveries to the log instead of sending them. Used in
// dev and tests where no relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	log := m.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("mail delivery (log only)",
		"to", msg.To,
		"subject", msg.Subject,
		"link", msg.Link,
	)
	return nil
}
