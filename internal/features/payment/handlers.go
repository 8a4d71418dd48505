package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/server/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Initialize starts a membership purchase.
// POST /api/payments/initialize
func (h *Handler) Initialize(c *gin.Context) {
	userID := middleware.UserID(c)

	var req struct {
		TierID      int64  `json:"tier_id" binding:"required"`
		Method      string `json:"payment_method" binding:"required"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	p, stk, err := h.service.Initialize(c.Request.Context(), userID, req.TierID, req.Method, req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidTier):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid membership tier"})
		case errors.Is(err, common.ErrInvalidPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported payment method"})
		case errors.Is(err, common.ErrInvalidAccountInfo):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required for M-Pesa payment"})
		default:
			log.WithError(err).WithField("user_id", userID).Error("Failed to initialize payment")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to initiate payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_id":          p.ID,
		"reference":           p.Reference,
		"amount":              p.Amount,
		"status":              p.Status,
		"message":             "Please complete the payment on your phone",
		"checkout_request_id": stk.CheckoutRequestID,
	})
}

// MpesaCallback receives the gateway's settlement notification.
// Unauthenticated: the gateway is the caller.
// POST /api/payments/mpesa/callback?reference=
func (h *Handler) MpesaCallback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing reference"})
		return
	}

	var body struct {
		Body struct {
			StkCallback struct {
				ResultCode       int    `json:"ResultCode"`
				ResultDesc       string `json:"ResultDesc"`
				CallbackMetadata struct {
					Item []struct {
						Name  string `json:"Name"`
						Value any    `json:"Value"`
					} `json:"Item"`
				} `json:"CallbackMetadata"`
			} `json:"stkCallback"`
		} `json:"Body"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback payload"})
		return
	}

	cb := body.Body.StkCallback
	var receipt string
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			if s, ok := item.Value.(string); ok {
				receipt = s
			}
		}
	}

	err := h.service.HandleCallback(c.Request.Context(), reference, cb.ResultCode, receipt)
	if err != nil {
		if errors.Is(err, common.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		log.WithError(err).WithField("reference", reference).Error("Failed to process payment callback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": cb.ResultCode == 0})
}

// Status returns the state of one payment.
// GET /api/payments/status/:reference
func (h *Handler) Status(c *gin.Context) {
	userID := middleware.UserID(c)
	reference := c.Param("reference")

	p, err := h.service.Status(c.Request.Context(), userID, reference)
	if err != nil {
		if errors.Is(err, common.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		log.WithError(err).WithField("reference", reference).Error("Failed to load payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, paymentJSON(p))
}

// History lists the caller's payments.
// GET /api/payments/history?page=&per_page=
func (h *Handler) History(c *gin.Context) {
	userID := middleware.UserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	ps, err := h.service.History(c.Request.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load payments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	out := make([]gin.H, 0, len(ps))
	for _, p := range ps {
		out = append(out, paymentJSON(p))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out, "page": page})
}

func paymentJSON(p *Payment) gin.H {
	return gin.H{
		"payment_id":   p.ID,
		"tier_id":      p.TierID,
		"reference":    p.Reference,
		"amount":       p.Amount,
		"method":       p.Method,
		"status":       p.Status,
		"created_at":   p.CreatedAt,
		"completed_at": p.CompletedAt,
	}
}
