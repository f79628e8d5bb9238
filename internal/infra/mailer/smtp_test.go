package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func decodeBase64(t *testing.T, r io.Reader) string {
	t.Helper()
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	out, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(raw), "\r\n", ""))
	require.NoError(t, err)
	return string(out)
}

func TestBuildMessage_HTMLOnly(t *testing.T) {
	email := NewEmail("shop@example.com", []string{"ops@example.com"},
		WithSubject("Order 1001 updated"),
		WithHTML("<p>Hello Sam</p>"),
	)

	raw, err := BuildMessage(email, testNow)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	from, err := msg.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "shop@example.com", from[0].Address)
	to, err := msg.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "ops@example.com", to[0].Address)
	assert.Equal(t, "Order 1001 updated", msg.Header.Get("Subject"))
	assert.Equal(t, `text/html; charset="UTF-8"`, msg.Header.Get("Content-Type"))
	assert.Equal(t, "<p>Hello Sam</p>", decodeBase64(t, msg.Body))
}

func TestBuildMessage_WithAttachments(t *testing.T) {
	email := NewEmail("shop@example.com", []string{"ops@example.com"},
		WithSubject("Übersicht"),
		WithHTML("<p>see attached</p>"),
		WithAttachments(
			Attachment{Filename: "1700000000000_box.png", ContentType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'}},
			Attachment{Filename: "notes.bin", Content: []byte("raw")},
		),
	)

	raw, err := BuildMessage(email, testNow)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Übersicht", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])

	part, err := mr.NextRawPart()
	require.NoError(t, err)
	assert.Contains(t, part.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "<p>see attached</p>", decodeBase64(t, part))

	part, err = mr.NextRawPart()
	require.NoError(t, err)
	assert.Equal(t, "1700000000000_box.png", part.FileName())
	assert.Contains(t, part.Header.Get("Content-Type"), "image/png")
	assert.Equal(t, string([]byte{0x89, 'P', 'N', 'G'}), decodeBase64(t, part))

	part, err = mr.NextRawPart()
	require.NoError(t, err)
	assert.Equal(t, "notes.bin", part.FileName())
	assert.Contains(t, part.Header.Get("Content-Type"), "application/octet-stream")

	_, err = mr.NextRawPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuildMessage_LongBodyIsWrapped(t *testing.T) {
	email := NewEmail("a@example.com", []string{"b@example.com"}, WithHTML(strings.Repeat("x", 500)))

	raw, err := BuildMessage(email, testNow)
	require.NoError(t, err)

	for _, line := range strings.Split(string(raw), "\r\n") {
		assert.LessOrEqual(t, len(line), 78)
	}
}

func TestBuildMessage_DisplayNameSender(t *testing.T) {
	raw, err := BuildMessage(NewEmail("Müller Shop <shop@example.com>", []string{"ops@example.com"}), testNow)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	from, err := msg.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "Müller Shop", from[0].Name)
	assert.Equal(t, "shop@example.com", from[0].Address)
}

func TestBuildMessage_RejectsInvalidAddresses(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   []string
	}{
		{name: "header injection in sender", from: "a@example.com\r\nBcc: x@evil.com", to: []string{"b@example.com"}},
		{name: "bare newline in sender", from: "Shop\n<a@example.com>", to: []string{"b@example.com"}},
		{name: "injection in recipient", from: "a@example.com", to: []string{"b@example.com\r\nBcc: x@evil.com"}},
		{name: "not an address", from: "shop", to: []string{"b@example.com"}},
		{name: "empty sender", from: "", to: []string{"b@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := BuildMessage(NewEmail(tt.from, tt.to, WithHTML("<p>x</p>")), testNow)
			assert.ErrorIs(t, err, ErrInvalidAddress)
			assert.Nil(t, raw)
		})
	}
}

func TestSMTPMailer_SenderFallsBackToUsername(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		username string
		wantErr  error
	}{
		{name: "empty sender and no username", from: "", username: "", wantErr: ErrInvalidAddress},
		{name: "blank sender and no username", from: "   ", username: "", wantErr: ErrInvalidAddress},
		{name: "injected sender", from: "a@example.com\r\nBcc: x@evil.com", username: "smtp@example.com", wantErr: ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &SMTPMailer{Host: "127.0.0.1", Port: 1, Username: tt.username, Timeout: time.Second}
			err := m.Send(context.Background(), NewEmail(tt.from, []string{"b@example.com"}))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// A valid fallback gets as far as dialing.
	m := &SMTPMailer{Host: "127.0.0.1", Port: 1, Username: "smtp@example.com", Timeout: time.Second}
	err := m.Send(context.Background(), NewEmail("", []string{"b@example.com"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "failed to connect to SMTP server")
}

func TestSMTPMailer_SendValidation(t *testing.T) {
	m := &SMTPMailer{Host: "127.0.0.1", Port: 1, Timeout: time.Second}

	err := m.Send(context.Background(), Email{From: "a@example.com"})
	assert.EqualError(t, err, "no recipients")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Send(ctx, NewEmail("a@example.com", []string{"b@example.com"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTPMailer_Unreachable(t *testing.T) {
	m := &SMTPMailer{Host: "127.0.0.1", Port: 1, Timeout: time.Second}

	err := m.Send(context.Background(), NewEmail("a@example.com", []string{"b@example.com"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to SMTP server")
}
