package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-timeline/internal/domain"
	rabbit "order-timeline/internal/infra/rabbitmq"
	"order-timeline/internal/infra/storage"
	"order-timeline/internal/repository"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrStoreAttachment = errors.New("failed to store attachment")
	ErrSaveComment     = errors.New("failed to save comment")
)

type Upload struct {
	Name    string
	Content io.Reader
}

type SubmitInput struct {
	OrderID    string
	CustomText string
	Uploads    []Upload
}

type CommentService struct {
	comments     repository.CommentRepository
	attachments  storage.AttachmentStoreInterface
	cache        *OrderCache
	notifier     *NotificationService
	publisher    rabbit.PublisherInterface
	fallbackName string
	now          func() time.Time
	log          *zap.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	attachments storage.AttachmentStoreInterface,
	cache *OrderCache,
	notifier *NotificationService,
	publisher rabbit.PublisherInterface,
	fallbackName string,
	log *zap.Logger,
) *CommentService {
	if publisher == nil {
		publisher = rabbit.NopPublisher{}
	}
	return &CommentService{
		comments:     comments,
		attachments:  attachments,
		cache:        cache,
		notifier:     notifier,
		publisher:    publisher,
		fallbackName: fallbackName,
		now:          time.Now,
		log:          log,
	}
}

// Append builds and persists one comment. Persistence errors are returned.
func (s *CommentService) Append(ctx context.Context, orderID, text string, refs []string) (*domain.Comment, error) {
	if refs == nil {
		refs = []string{}
	}
	c := &domain.Comment{
		ID:             uuid.NewString(),
		OrderID:        domain.NormalizeOrderID(orderID),
		Text:           text,
		AttachmentRefs: refs,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.comments.Append(ctx, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveComment, err)
	}
	return c, nil
}

// Submit stores the uploads, records the comment and emails the configured
// recipient. A notification failure is returned together with the saved
// comment, which is not rolled back.
func (s *CommentService) Submit(ctx context.Context, in SubmitInput) (*domain.Comment, error) {
	if in.OrderID == "" || in.CustomText == "" {
		return nil, ErrInvalidInput
	}
	orderID := domain.NormalizeOrderID(in.OrderID)

	var (
		stored []domain.Attachment
		refs   = []string{}
	)
	for _, u := range in.Uploads {
		a, err := s.attachments.Store(u.Name, u.Content)
		if err != nil {
			s.logOrphans(orderID, stored, err)
			return nil, fmt.Errorf("%w: %w", ErrStoreAttachment, err)
		}
		if a == nil {
			continue
		}
		stored = append(stored, *a)
		refs = append(refs, a.URL)
	}

	comment, err := s.Append(ctx, orderID, in.CustomText, refs)
	if err != nil {
		s.log.Error("failed to save comment", zap.String("order_id", orderID), zap.Error(err))
		s.logOrphans(orderID, stored, err)
		return nil, err
	}

	s.log.Info("comment saved",
		zap.String("order_id", orderID),
		zap.String("comment_id", comment.ID),
		zap.Int("attachments", len(stored)),
	)

	s.publishCommentCreated(ctx, comment)

	err = s.notifier.Notify(ctx, NotifyInput{
		OrderID:      orderID,
		CustomerName: s.customerName(ctx, orderID),
		CustomText:   in.CustomText,
		Attachments:  stored,
	})
	return comment, err
}

// logOrphans records uploads already written for a comment that will not
// be saved. They stay on disk.
func (s *CommentService) logOrphans(orderID string, stored []domain.Attachment, cause error) {
	if len(stored) == 0 {
		return
	}
	paths := make([]string, 0, len(stored))
	for _, a := range stored {
		paths = append(paths, a.StoredPath)
	}
	s.log.Warn("uploads stored without a comment",
		zap.String("order_id", orderID),
		zap.Strings("stored_paths", paths),
		zap.Error(cause),
	)
}

func (s *CommentService) customerName(ctx context.Context, orderID string) string {
	if name := s.cache.CustomerName(ctx, orderID); name != "" {
		return name
	}
	return s.fallbackName
}

func (s *CommentService) publishCommentCreated(ctx context.Context, c *domain.Comment) {
	evt := domain.CommentCreatedEvent{
		CommentID:       c.ID,
		OrderID:         c.OrderID,
		AttachmentCount: len(c.AttachmentRefs),
		CreatedAt:       c.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, rabbit.RoutingKeyCommentCreated, evt); err != nil {
		s.log.Warn("failed to publish comment event", zap.String("comment_id", c.ID), zap.Error(err))
	}
}
