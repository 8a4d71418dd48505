// Package membership — handlers.go exposes the tier catalog and the
// admin tier editing endpoints.
package membership

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListTiers returns the purchasable tiers.
// GET /api/tiers
func (h *Handler) ListTiers(c *gin.Context) {
	tiers, err := h.service.ListTiers(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list tiers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiersJSON(tiers)})
}

// AdminListTiers includes retired tiers.
// GET /api/admin/tiers
func (h *Handler) AdminListTiers(c *gin.Context) {
	tiers, err := h.service.ListAllTiers(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list tiers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiersJSON(tiers)})
}

type updateTierRequest struct {
	Name           string `json:"name" binding:"required"`
	Price          int64  `json:"price" binding:"required,gt=0"`
	DailyMissions  int    `json:"daily_missions" binding:"required,gt=0"`
	ReferralLevels int    `json:"referral_levels" binding:"required,gte=0,lte=5"`
	Description    string `json:"description"`
	IsActive       *bool  `json:"is_active" binding:"required"`
}

// AdminUpdateTier applies plain field updates to a tier.
// PUT /api/admin/tiers/:id
func (h *Handler) AdminUpdateTier(c *gin.Context) {
	tierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier id"})
		return
	}

	var req updateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := &Tier{
		ID:             tierID,
		Name:           req.Name,
		Price:          req.Price,
		DailyMissions:  req.DailyMissions,
		ReferralLevels: req.ReferralLevels,
		Description:    req.Description,
		IsActive:       *req.IsActive,
	}
	if err := h.service.UpdateTier(c.Request.Context(), t); err != nil {
		if errors.Is(err, common.ErrInvalidTier) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tier not found"})
			return
		}
		log.WithError(err).WithField("tier_id", tierID).Error("Failed to update tier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tier updated"})
}

func tiersJSON(tiers []*Tier) []gin.H {
	out := make([]gin.H, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, gin.H{
			"id":              t.ID,
			"name":            t.Name,
			"price":           t.Price,
			"daily_missions":  t.DailyMissions,
			"referral_levels": t.ReferralLevels,
			"description":     t.Description,
			"is_active":       t.IsActive,
		})
	}
	return out
}
