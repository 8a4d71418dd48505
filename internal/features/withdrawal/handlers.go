package withdrawal

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

// Request files a payout request.
// POST /api/withdrawals
func (h *Handler) Request(c *gin.Context) {
	userID := middleware.UserID(c)

	var req struct {
		Amount      int64  `json:"amount" binding:"required,gt=0"`
		Method      string `json:"method" binding:"required"`
		AccountInfo string `json:"account_info" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	w, err := h.service.Request(c.Request.Context(), userID, req.Amount, req.Method, req.AccountInfo)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		case errors.Is(err, common.ErrBelowMinWithdrawal):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Amount is below the minimum withdrawal"})
		case errors.Is(err, common.ErrInvalidWithdrawalMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported withdrawal method"})
		case errors.Is(err, common.ErrInvalidAccountInfo):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account details"})
		case errors.Is(err, common.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		default:
			log.WithError(err).WithField("user_id", userID).Error("Failed to request withdrawal")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Withdrawal request submitted",
		"withdrawal": withdrawalJSON(w),
	})
}

// History lists the caller's requests.
// GET /api/withdrawals?page=&per_page=
func (h *Handler) History(c *gin.Context) {
	userID := middleware.UserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	ws, err := h.service.History(c.Request.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load withdrawals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawalsJSON(ws), "page": page})
}

// AdminPending returns the review queue.
// GET /api/admin/withdrawals
func (h *Handler) AdminPending(c *gin.Context) {
	ws, err := h.service.Pending(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to load pending withdrawals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawalsJSON(ws)})
}

// AdminResolve approves or rejects a request.
// POST /api/admin/withdrawals/:id/resolve
func (h *Handler) AdminResolve(c *gin.Context) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal id"})
		return
	}

	var req struct {
		Status    string `json:"status" binding:"required,oneof=completed failed"`
		AdminNote string `json:"admin_note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	w, err := h.service.Resolve(c.Request.Context(), withdrawalID, req.Status, req.AdminNote)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
		case errors.Is(err, common.ErrWithdrawalProcessed):
			c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal already processed"})
		default:
			log.WithError(err).WithField("withdrawal_id", withdrawalID).Error("Failed to resolve withdrawal")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": withdrawalJSON(w)})
}

func withdrawalsJSON(ws []*Withdrawal) []gin.H {
	out := make([]gin.H, 0, len(ws))
	for _, w := range ws {
		out = append(out, withdrawalJSON(w))
	}
	return out
}

func withdrawalJSON(w *Withdrawal) gin.H {
	return gin.H{
		"id":           w.ID,
		"user_id":      w.UserID,
		"amount":       w.Amount,
		"method":       w.Method,
		"account_info": w.AccountInfo,
		"status":       w.Status,
		"admin_note":   w.AdminNote,
		"created_at":   w.CreatedAt,
		"resolved_at":  w.ResolvedAt,
	}
}
