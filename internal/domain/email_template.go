package domain

import "time"

// ActiveTemplateID is the key of the single email template row. Saving a
// template replaces the row instead of adding another candidate.
const ActiveTemplateID = "active"

const (
	PlaceholderOrderID      = "[OrderId]"
	PlaceholderCustomerName = "[CustomerName]"
	PlaceholderCustomText   = "[CustomText]"
)

type EmailTemplate struct {
	ID          string    `json:"-" gorm:"primaryKey;size:32"`
	FromAddress string    `json:"email" gorm:"size:255"`
	Subject     string    `json:"subject" gorm:"size:998"`
	Body        string    `json:"template" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
