package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTP mails each submission to the owner's inbox.
type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	To   string

	Timeout time.Duration // per attempt
	Retry   Retry

	// send is swapped out in tests.
	send func(ctx context.Context, addr string, msg []byte) error
}

func (s *SMTP) Notify(ctx context.Context, m Message) error {
	if s.User == "" || s.Pass == "" || s.Host == "" || s.To == "" {
		return fmt.Errorf("smtp credentials: %w", ErrNotConfigured)
	}
	send := s.send
	if send == nil {
		send = s.deliver
	}
	addr := net.JoinHostPort(s.Host, s.Port)
	msg := s.compose(m)

	return s.Retry.Do(ctx, func(ctx context.Context) error {
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		return send(ctx, addr, msg)
	})
}

func (s *SMTP) compose(m Message) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s (%s)", oneLine(m.Name), oneLine(m.Subject))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Topic: %s
Reference: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Name, m.Email, m.Subject, m.Reference, m.Body)

	return []byte("To: " + s.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.User + "\r\n" +
		"Reply-To: " + oneLine(m.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// oneLine strips CR/LF so user input cannot inject extra headers.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// deliver is smtp.SendMail with the dial and the whole exchange bounded by ctx.
func (s *SMTP) deliver(ctx context.Context, addr string, msg []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if err := c.Auth(smtp.PlainAuth("", s.User, s.Pass, s.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(s.User); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(s.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}
