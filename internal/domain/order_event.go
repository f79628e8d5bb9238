package domain

import "time"

type CommentCreatedEvent struct {
	CommentID       string    `json:"commentId"`
	OrderID         string    `json:"orderId"`
	AttachmentCount int       `json:"attachmentCount"`
	CreatedAt       time.Time `json:"createdAt"`
}
