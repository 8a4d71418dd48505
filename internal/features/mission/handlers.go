package mission

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

// List returns today's remaining missions for the caller.
// GET /api/missions
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	missions, remaining, err := h.service.ListAvailable(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrMembershipRequired) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Active membership required"})
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to list missions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"missions":  missionsJSON(missions),
		"remaining": remaining,
	})
}

// Complete records a completion and credits the reward.
// POST /api/missions/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	userID := middleware.UserID(c)

	missionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mission id"})
		return
	}

	var req struct {
		Proof string `json:"proof"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comp, err := h.service.Complete(c.Request.Context(), userID, missionID, req.Proof)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMembershipRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "Active membership required"})
		case errors.Is(err, common.ErrMissionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Mission not found"})
		case errors.Is(err, common.ErrAlreadyCompletedToday):
			c.JSON(http.StatusConflict, gin.H{"error": "Mission already completed today"})
		case errors.Is(err, common.ErrDailyLimitReached):
			c.JSON(http.StatusConflict, gin.H{"error": "Daily mission limit reached"})
		case errors.Is(err, common.ErrInvalidProof):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Proof of completion is invalid"})
		default:
			log.WithError(err).WithFields(log.Fields{
				"user_id":    userID,
				"mission_id": missionID,
			}).Error("Failed to complete mission")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Mission completed",
		"completion": gin.H{
			"id":           comp.ID,
			"mission_id":   comp.MissionID,
			"reward":       comp.Reward,
			"completed_at": comp.CompletedAt,
		},
	})
}

// History returns the caller's past completions.
// GET /api/missions/history?page=&per_page=
func (h *Handler) History(c *gin.Context) {
	userID := middleware.UserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	comps, err := h.service.History(c.Request.Context(), userID, perPage, (page-1)*perPage)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load completions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	out := make([]gin.H, 0, len(comps))
	for _, comp := range comps {
		out = append(out, gin.H{
			"id":           comp.ID,
			"mission_id":   comp.MissionID,
			"reward":       comp.Reward,
			"completed_at": comp.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"completions": out, "page": page})
}

// Stats returns the caller's completion counters.
// GET /api/missions/stats
func (h *Handler) Stats(c *gin.Context) {
	userID := middleware.UserID(c)

	s, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to load mission stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today":          s.Today,
		"this_week":      s.ThisWeek,
		"this_month":     s.ThisMonth,
		"total_earnings": s.TotalEarnings,
	})
}

type missionRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
	Reward       int64  `json:"reward" binding:"required,gt=0"`
	Type         string `json:"type" binding:"required,oneof=ad social survey"`
	ContentURL   string `json:"content_url"`
	Duration     int    `json:"duration" binding:"gte=0"`
	IsActive     *bool  `json:"is_active"`
}

// AdminCreate adds a mission.
// POST /api/admin/missions
func (h *Handler) AdminCreate(c *gin.Context) {
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &Mission{
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		Reward:       req.Reward,
		Type:         req.Type,
		ContentURL:   req.ContentURL,
		Duration:     req.Duration,
		IsActive:     true,
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := h.service.CreateMission(c.Request.Context(), m); err != nil {
		log.WithError(err).Error("Failed to create mission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mission": missionJSON(m)})
}

// AdminUpdate edits a mission.
// PUT /api/admin/missions/:id
func (h *Handler) AdminUpdate(c *gin.Context) {
	missionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mission id"})
		return
	}

	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &Mission{
		ID:           missionID,
		Title:        req.Title,
		Description:  req.Description,
		Instructions: req.Instructions,
		Reward:       req.Reward,
		Type:         req.Type,
		ContentURL:   req.ContentURL,
		Duration:     req.Duration,
		IsActive:     true,
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := h.service.UpdateMission(c.Request.Context(), m); err != nil {
		log.WithError(err).WithField("mission_id", missionID).Error("Failed to update mission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mission": missionJSON(m)})
}

func missionsJSON(missions []*Mission) []gin.H {
	out := make([]gin.H, 0, len(missions))
	for _, m := range missions {
		out = append(out, missionJSON(m))
	}
	return out
}

func missionJSON(m *Mission) gin.H {
	return gin.H{
		"id":           m.ID,
		"title":        m.Title,
		"description":  m.Description,
		"instructions": m.Instructions,
		"reward":       m.Reward,
		"type":         m.Type,
		"content_url":  m.ContentURL,
		"duration":     m.Duration,
		"is_active":    m.IsActive,
	}
}
