package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"order-timeline/internal/domain"
	"order-timeline/internal/infra/mailer"
	"order-timeline/internal/metrics"
	"order-timeline/internal/repository"
)

var (
	ErrNoActiveTemplate   = errors.New("no active email template")
	ErrNotificationFailed = errors.New("failed to send notification")
)

type TemplateVars struct {
	OrderID      string
	CustomerName string
	CustomText   string
}

// Render substitutes the first occurrence of each placeholder found in tpl.
// Later occurrences are left as is, and substituted values are never scanned
// for placeholders.
func Render(tpl string, vars TemplateVars) string {
	type hit struct {
		at    int
		token string
		value string
	}
	var hits []hit
	for _, p := range []struct{ token, value string }{
		{domain.PlaceholderOrderID, vars.OrderID},
		{domain.PlaceholderCustomerName, vars.CustomerName},
		{domain.PlaceholderCustomText, vars.CustomText},
	} {
		if i := strings.Index(tpl, p.token); i >= 0 {
			hits = append(hits, hit{at: i, token: p.token, value: p.value})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int { return a.at - b.at })

	var b strings.Builder
	last := 0
	for _, h := range hits {
		b.WriteString(tpl[last:h.at])
		b.WriteString(h.value)
		last = h.at + len(h.token)
	}
	b.WriteString(tpl[last:])
	return b.String()
}

type NotifyInput struct {
	OrderID      string
	CustomerName string
	CustomText   string
	Attachments  []domain.Attachment
}

type NotificationService struct {
	templates repository.TemplateRepository
	mailer    mailer.Mailer
	recipient string
	log       *zap.Logger
}

func NewNotificationService(templates repository.TemplateRepository, m mailer.Mailer, recipient string, log *zap.Logger) *NotificationService {
	return &NotificationService{
		templates: templates,
		mailer:    m,
		recipient: recipient,
		log:       log,
	}
}

// Notify renders the active template for one comment and mails it to the
// configured recipient with every stored attachment. There is no retry.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) error {
	tpl, err := s.templates.Active(ctx)
	if err != nil {
		metrics.NotificationsAttemptedTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: load template: %w", ErrNotificationFailed, err)
	}
	if tpl == nil {
		metrics.NotificationsAttemptedTotal.WithLabelValues("no_template").Inc()
		return fmt.Errorf("%w: %w", ErrNotificationFailed, ErrNoActiveTemplate)
	}

	body := Render(tpl.Body, TemplateVars{
		OrderID:      in.OrderID,
		CustomerName: in.CustomerName,
		CustomText:   in.CustomText,
	})

	files := make([]mailer.Attachment, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		files = append(files, mailer.Attachment{
			Filename:    a.FileName,
			ContentType: a.ContentType,
			Content:     a.Content,
		})
	}

	email := mailer.NewEmail(tpl.FromAddress, []string{s.recipient},
		mailer.WithSubject(tpl.Subject),
		mailer.WithHTML(body),
		mailer.WithAttachments(files...),
	)

	if err := s.mailer.Send(ctx, email); err != nil {
		metrics.NotificationsAttemptedTotal.WithLabelValues("failed").Inc()
		s.log.Error("failed to send order notification",
			zap.String("order_id", in.OrderID),
			zap.Int("attachments", len(files)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}

	metrics.NotificationsAttemptedTotal.WithLabelValues("sent").Inc()
	s.log.Info("order notification sent",
		zap.String("order_id", in.OrderID),
		zap.Int("attachments", len(files)),
	)
	return nil
}
