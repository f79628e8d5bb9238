package domain

import "time"

// Comment is an immutable note a merchant attached to an order. OrderID
// references Order.ID by value only.
type Comment struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	OrderID        string    `json:"orderId" gorm:"size:64;not null;index"`
	Text           string    `json:"comments" gorm:"type:text;not null"`
	AttachmentRefs []string  `json:"imageURLs" gorm:"serializer:json;type:json"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null;index"`
}

func (Comment) TableName() string {
	return "order_comments"
}

type Attachment struct {
	FileName    string `json:"fileName"`
	StoredPath  string `json:"storedPath"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"`
}
