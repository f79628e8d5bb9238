package mailer

import "context"

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Email struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type EmailOption func(*Email)

func NewEmail(from string, to []string, opts ...EmailOption) Email {
	e := Email{
		From: from,
		To:   to,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func WithSubject(sub string) EmailOption {
	return func(e *Email) {
		e.Subject = sub
	}
}

func WithHTML(html string) EmailOption {
	return func(e *Email) {
		e.HTML = html
	}
}

func WithAttachments(files ...Attachment) EmailOption {
	return func(e *Email) {
		e.Attachments = append(e.Attachments, files...)
	}
}
