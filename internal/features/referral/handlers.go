// Package referral — handlers.go serves the referral dashboard data.
package referral

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/server/middleware"
)

// Namer resolves user ids to display names for the referral list.
type Namer interface {
	UsernameByID(ctx context.Context, userID int64) (string, error)
}

type Handler struct {
	service *Service
	namer   Namer
}

func NewHandler(service *Service, namer Namer) *Handler {
	return &Handler{service: service, namer: namer}
}

// List returns direct referrals plus per-level statistics. The caller's
// own username doubles as their referral code.
// GET /api/user/referrals
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	direct, err := h.service.DirectReferrals(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load referrals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	referred := make([]gin.H, 0, len(direct))
	for _, ref := range direct {
		name, err := h.namer.UsernameByID(ctx, ref.ReferredID)
		if err != nil {
			name = "unknown"
		}
		referred = append(referred, gin.H{
			"user_id":   ref.ReferredID,
			"username":  name,
			"joined_at": ref.CreatedAt,
		})
	}

	stats, err := h.service.Stats(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load referral stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	var totalReferrals int
	var totalCommissions int64
	levels := make([]gin.H, 0, len(stats))
	for _, s := range stats {
		totalReferrals += s.Count
		totalCommissions += s.Commissions
		levels = append(levels, gin.H{
			"level":       s.Level,
			"count":       s.Count,
			"commissions": s.Commissions,
		})
	}

	callerName, err := h.namer.UsernameByID(ctx, userID)
	if err != nil {
		callerName = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals":         referred,
		"levels":            levels,
		"total_referrals":   totalReferrals,
		"total_commissions": totalCommissions,
		"referral_code":     callerName,
	})
}
