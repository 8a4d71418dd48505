// Package wallet — handlers.go maps HTTP requests onto the wallet
// service and translates errors into responses.
package wallet

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

// Get returns the wallet overview with the ten most recent ledger entries.
// GET /api/wallet
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	w, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to load wallet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	recent, err := h.service.History(c.Request.Context(), userID, 10, 0)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet": gin.H{
			"balance":             w.Balance,
			"total_earned":        w.TotalEarned,
			"total_withdrawn":     w.TotalWithdrawn,
			"recent_transactions": transactionsJSON(recent),
		},
	})
}

// Transactions returns the paginated ledger history.
// GET /api/wallet/transactions?page=&per_page=
func (h *Handler) Transactions(c *gin.Context) {
	userID := middleware.UserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	txs, err := h.service.History(c.Request.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactionsJSON(txs),
		"page":         page,
	})
}

// AdminStats returns platform-wide wallet aggregates.
// GET /api/admin/wallets/stats
func (h *Handler) AdminStats(c *gin.Context) {
	balance, earned, withdrawn, err := h.service.Totals(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to load wallet totals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_balance":   balance,
		"total_earned":    earned,
		"total_withdrawn": withdrawn,
	})
}

func transactionsJSON(txs []*Transaction) []gin.H {
	out := make([]gin.H, 0, len(txs))
	for _, t := range txs {
		out = append(out, gin.H{
			"id":          t.ID,
			"amount":      t.Amount,
			"type":        t.Kind,
			"description": t.Description,
			"reference":   t.Reference,
			"created_at":  t.CreatedAt,
		})
	}
	return out
}
