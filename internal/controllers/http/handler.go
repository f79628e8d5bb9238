package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order-timeline/internal/domain"
	"order-timeline/internal/infra"
	"order-timeline/internal/services"
)

type Handler struct {
	orders    *services.OrderService
	comments  *services.CommentService
	templates *services.TemplateService
	auth      infra.AuthenticatorInterface
	log       *zap.Logger
}

func NewHandler(
	orders *services.OrderService,
	comments *services.CommentService,
	templates *services.TemplateService,
	auth infra.AuthenticatorInterface,
	log *zap.Logger,
) *Handler {
	return &Handler{
		orders:    orders,
		comments:  comments,
		templates: templates,
		auth:      auth,
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	app := r.Group("/app", RequireSession(h.auth, h.log))
	app.GET("", h.Shop)
	app.POST("", h.ListOrders)
	app.GET("/orders/:id", h.GetOrder)
	app.POST("/orders/:id", h.SubmitComment)
	app.GET("/email", h.GetTemplate)
	app.POST("/email", h.SaveTemplate)
}

// RegisterUploads serves stored attachments. The route is public, like the
// links embedded in notification emails.
func RegisterUploads(r *gin.Engine, prefix string, fs http.FileSystem) {
	r.StaticFS(prefix, fs)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Shop(c *gin.Context) {
	c.JSON(http.StatusOK, ShopResponse{Shop: sessionFrom(c).Shop})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.log.Error("failed to list orders", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, OrderListResponse{Orders: orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id := c.Param("id")

	order, comments, err := h.orders.GetOrder(c.Request.Context(), sessionFrom(c), id)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Order not found"})
		return
	case errors.Is(err, services.ErrUpstream):
		h.log.Error("failed to fetch order", zap.String("order_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to fetch order"})
		return
	default:
		h.log.Error("failed to load order comments", zap.String("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, OrderDetailResponse{Order: order, OrderComments: comments})
}

func (h *Handler) SubmitComment(c *gin.Context) {
	var req SubmitCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}
	pathID := c.Param("id")
	switch {
	case req.ID == "":
		req.ID = pathID
	case domain.NormalizeOrderID(req.ID) != domain.NormalizeOrderID(pathID):
		h.log.Warn("order id does not match route", zap.String("order_id", req.ID), zap.String("route_id", pathID))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	uploads, closeAll, err := openUploads(c)
	defer closeAll()
	if err != nil {
		h.log.Error("failed to read uploads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to store attachments"})
		return
	}

	comment, err := h.comments.Submit(c.Request.Context(), services.SubmitInput{
		OrderID:    req.ID,
		CustomText: req.CustomText,
		Uploads:    uploads,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, SubmitCommentResponse{OrderComments: comment})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
	case errors.Is(err, services.ErrStoreAttachment):
		h.log.Error("failed to store attachments", zap.String("order_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to store attachments"})
	case comment != nil:
		c.JSON(http.StatusInternalServerError, SubmitCommentResponse{
			Error:         "Failed to send email",
			OrderComments: comment,
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update order"})
	}
}

func (h *Handler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.Active(c.Request.Context())
	if err != nil {
		h.log.Error("failed to load email template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load data"})
		return
	}
	if tpl == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, TemplateResponse{Email: tpl.FromAddress, Subject: tpl.Subject, Template: tpl.Body})
}

func (h *Handler) SaveTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	if _, err := h.templates.Save(c.Request.Context(), req.Email, req.Subject, req.Template); err != nil {
		h.log.Error("failed to save email template", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save data"})
		return
	}
	c.JSON(http.StatusOK, TemplateResponse{Email: req.Email, Subject: req.Subject, Template: req.Template})
}

// openUploads opens every file sent as images or images[]. The returned
// func closes whatever was opened and is safe to call on error.
func openUploads(c *gin.Context) ([]services.Upload, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, closeAll, nil
	}

	var uploads []services.Upload
	for _, key := range []string{"images", "images[]"} {
		for _, fh := range form.File[key] {
			f, err := fh.Open()
			if err != nil {
				return nil, closeAll, err
			}
			opened = append(opened, f)
			uploads = append(uploads, services.Upload{Name: fh.Filename, Content: f})
		}
	}
	return uploads, closeAll, nil
}
