package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
	"github.com/Kyamuel/shillearnhub-backened/internal/server/middleware"
)

// MembershipReader supplies the membership flag for profile payloads.
type MembershipReader interface {
	Get(ctx context.Context, userID int64) (*membership.Membership, error)
}

type Handler struct {
	service     *Service
	tokens      *middleware.JWTManager
	memberships MembershipReader
}

func NewHandler(service *Service, tokens *middleware.JWTManager, memberships MembershipReader) *Handler {
	return &Handler{service: service, tokens: tokens, memberships: memberships}
}

// Register creates an account and sends the first one-time code.
// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Username     string `json:"username" binding:"required,min=3,max=32,alphanum"`
		Email        string `json:"email" binding:"required,email"`
		PhoneNumber  string `json:"phone_number" binding:"required,msisdn"`
		FirstName    string `json:"first_name" binding:"required"`
		LastName     string `json:"last_name" binding:"required"`
		Password     string `json:"password" binding:"required,min=8"`
		ReferralCode string `json:"referral_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.Register(c.Request.Context(), RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.PhoneNumber,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email or phone already exists"})
		case errors.Is(err, common.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or phone number"})
		default:
			log.WithError(err).Error("Failed to register user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":               "User registered successfully",
		"user_id":               u.ID,
		"username":              u.Username,
		"verification_required": true,
	})
}

// Login checks the password and sends a one-time code.
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	u, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		case errors.Is(err, common.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		default:
			log.WithError(err).Error("Failed to log in")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":               "OTP sent for verification",
		"user_id":               u.ID,
		"verification_required": true,
	})
}

// VerifyOTP finishes login or signup and issues tokens.
// POST /api/auth/verify-otp
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req struct {
		UserID int64  `json:"user_id" binding:"required"`
		OTP    string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and OTP are required"})
		return
	}

	u, err := h.service.VerifyOTP(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, common.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		default:
			log.WithError(err).Error("Failed to verify OTP")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}

	access, refresh, err := h.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		log.WithError(err).Error("Failed to issue tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	hasMembership := false
	if mem, err := h.memberships.Get(c.Request.Context(), u.ID); err == nil && mem != nil {
		hasMembership = mem.IsUsable(time.Now())
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Verification successful",
		"access_token":  access,
		"refresh_token": refresh,
		"user": gin.H{
			"id":             u.ID,
			"username":       u.Username,
			"email":          u.Email,
			"first_name":     u.FirstName,
			"last_name":      u.LastName,
			"is_admin":       u.IsAdmin,
			"has_membership": hasMembership,
		},
	})
}

// Refresh exchanges a refresh token for a new access token.
// POST /api/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is required"})
		return
	}

	access, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// ForgotPassword sends a reset code when the email is known. The
// response is identical either way.
// POST /api/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	userID, err := h.service.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		log.WithError(err).Error("Failed to send reset OTP")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	resp := gin.H{"message": "If the email exists, a reset code will be sent"}
	if userID != 0 {
		resp["user_id"] = userID
	}
	c.JSON(http.StatusOK, resp)
}

// ResetPassword replaces the password after a valid reset code.
// POST /api/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		UserID      int64  `json:"user_id" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID, OTP and new password are required"})
		return
	}

	err := h.service.ResetPassword(c.Request.Context(), req.UserID, req.OTP, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, common.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
		default:
			log.WithError(err).Error("Failed to reset password")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// Profile returns the caller's account.
// GET /api/user/profile
func (h *Handler) Profile(c *gin.Context) {
	userID := middleware.UserID(c)

	u, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to load profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             u.ID,
		"username":       u.Username,
		"email":          u.Email,
		"phone_number":   u.Phone,
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"email_verified": u.EmailVerified,
		"phone_verified": u.PhoneVerified,
		"created_at":     u.CreatedAt,
	})
}

// AdminListUsers returns accounts for the admin panel.
// GET /api/admin/users?page=&per_page=
func (h *Handler) AdminListUsers(c *gin.Context) {
	page, perPage := pageParams(c)

	us, err := h.service.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	out := make([]gin.H, 0, len(us))
	for _, u := range us {
		out = append(out, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"phone":      u.Phone,
			"is_active":  u.IsActive,
			"is_admin":   u.IsAdmin,
			"created_at": u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "page": page})
}

// AdminSetActive enables or disables an account.
// POST /api/admin/users/:id/active
func (h *Handler) AdminSetActive(c *gin.Context) {
	userID, ok := idParam(c)
	if !ok {
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.service.SetActive(c.Request.Context(), userID, *req.Active); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to update account")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}
