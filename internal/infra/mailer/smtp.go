package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPMailer submits mail over SMTP: STARTTLS on 587/25, implicit TLS on 465.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

var _ Mailer = (*SMTPMailer)(nil)

var ErrInvalidAddress = errors.New("invalid email address")

func (m *SMTPMailer) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: m.Host}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	// Templates may carry an empty sender, the authenticated user is used then.
	if strings.TrimSpace(email.From) == "" {
		email.From = m.Username
	}
	sender, err := parseAddress(email.From)
	if err != nil {
		return err
	}

	msg, err := BuildMessage(email, time.Now())
	if err != nil {
		return err
	}

	timeout := m.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	addr := net.JoinHostPort(m.Host, fmt.Sprint(m.Port))
	dialer := &net.Dialer{Timeout: timeout}

	var conn net.Conn
	if m.Port == 465 {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, m.tlsConfig())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if m.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(m.tlsConfig()); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if m.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := c.Mail(sender.Address); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, to := range email.To {
		rcpt, err := parseAddress(to)
		if err != nil {
			return err
		}
		if err := c.Rcpt(rcpt.Address); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return c.Quit()
}

// parseAddress accepts a bare address or one with a display name. Line
// breaks are rejected so a value can never start a new header.
func parseAddress(s string) (*mail.Address, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: %q contains a line break", ErrInvalidAddress, s)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return addr, nil
}

// BuildMessage renders an RFC 5322 message. Without attachments the body
// is a single text/html part, otherwise multipart/mixed. From and every
// recipient must parse as an address.
func BuildMessage(email Email, now time.Time) ([]byte, error) {
	from, err := parseAddress(email.From)
	if err != nil {
		return nil, err
	}
	to := make([]string, 0, len(email.To))
	for _, s := range email.To {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		to = append(to, addr.String())
	}

	var buf bytes.Buffer

	writeHeader := func(k, v string) {
		buf.WriteString(k + ": " + v + "\r\n")
	}
	writeHeader("From", from.String())
	writeHeader("To", strings.Join(to, ", "))
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@order-timeline>", uuid.NewString()))
	writeHeader("MIME-Version", "1.0")

	if len(email.Attachments) == 0 {
		writeHeader("Content-Type", `text/html; charset="UTF-8"`)
		writeHeader("Content-Transfer-Encoding", "base64")
		buf.WriteString("\r\n")
		writeBase64(&buf, []byte(email.HTML))
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	writeHeader("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mw.Boundary()))
	buf.WriteString("\r\n")

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="UTF-8"`},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	writeBase64(htmlPart, []byte(email.HTML))

	for _, a := range email.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(ct, map[string]string{"name": a.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		writeBase64(part, a.Content)
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 wraps encoded output at 76 columns.
func writeBase64(w io.Writer, data []byte) {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		w.Write([]byte(enc[:76] + "\r\n"))
		enc = enc[76:]
	}
	if enc != "" {
		w.Write([]byte(enc + "\r\n"))
	}
}
