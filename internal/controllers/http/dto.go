package http

import "order-timeline/internal/domain"

// SubmitCommentRequest carries an optional id. The route's :id is used when
// it is absent and must agree with it when present.
type SubmitCommentRequest struct {
	ID         string `form:"id"`
	CustomText string `form:"customText" binding:"required"`
}

type SaveTemplateRequest struct {
	Email    string `form:"email" json:"email"`
	Subject  string `form:"subject" json:"subject"`
	Template string `form:"template" json:"template"`
}

type ShopResponse struct {
	Shop string `json:"shop"`
}

type OrderListResponse struct {
	Orders []domain.OrderSummary `json:"orders"`
}

type OrderDetailResponse struct {
	Order         *domain.OrderDetail `json:"order"`
	OrderComments []domain.Comment    `json:"orderComments"`
}

type SubmitCommentResponse struct {
	Error         string          `json:"error,omitempty"`
	OrderComments *domain.Comment `json:"orderComments"`
}

type TemplateResponse struct {
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Template string `json:"template"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
