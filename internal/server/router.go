// Package server assembles the HTTP surface: routes, auth, CORS,
// rate limiting and metrics.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/config"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/mission"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/payment"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/referral"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/users"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/withdrawal"
	"github.com/Kyamuel/shillearnhub-backened/internal/server/middleware"
)

// Handlers groups the per-feature HTTP handlers the router mounts.
type Handlers struct {
	Users      *users.Handler
	Wallet     *wallet.Handler
	Membership *membership.Handler
	Referral   *referral.Handler
	Mission    *mission.Handler
	Withdrawal *withdrawal.Handler
	Payment    *payment.Handler
}

// New builds the gin engine with all routes mounted.
func New(cfg *config.Config, tokens *middleware.JWTManager, limiter *middleware.RateLimiter, h Handlers) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(middleware.RateLimit(limiter))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public surface: signup, login and the gateway callback.
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Users.Register)
		auth.POST("/login", h.Users.Login)
		auth.POST("/verify-otp", h.Users.VerifyOTP)
		auth.POST("/refresh", h.Users.Refresh)
		auth.POST("/forgot-password", h.Users.ForgotPassword)
		auth.POST("/reset-password", h.Users.ResetPassword)
	}
	api.POST("/payments/mpesa/callback", h.Payment.MpesaCallback)
	api.GET("/membership/tiers", h.Membership.ListTiers)

	// Authenticated surface.
	authed := api.Group("", middleware.Auth(tokens))
	{
		authed.GET("/user/profile", h.Users.Profile)

		authed.GET("/wallet", h.Wallet.Get)
		authed.GET("/wallet/transactions", h.Wallet.Transactions)

		authed.GET("/missions", h.Mission.List)
		authed.POST("/missions/:id/complete", h.Mission.Complete)
		authed.GET("/missions/history", h.Mission.History)
		authed.GET("/missions/stats", h.Mission.Stats)

		authed.GET("/referrals", h.Referral.List)

		authed.POST("/withdrawals", h.Withdrawal.Request)
		authed.GET("/withdrawals", h.Withdrawal.History)

		authed.POST("/payments/initialize", h.Payment.Initialize)
		authed.GET("/payments/status/:reference", h.Payment.Status)
		authed.GET("/payments/history", h.Payment.History)
	}

	// Admin surface.
	admin := api.Group("/admin", middleware.Auth(tokens), middleware.AdminRequired())
	{
		admin.GET("/users", h.Users.AdminListUsers)
		admin.POST("/users/:id/active", h.Users.AdminSetActive)

		admin.GET("/wallets/stats", h.Wallet.AdminStats)

		admin.GET("/tiers", h.Membership.AdminListTiers)
		admin.PUT("/tiers/:id", h.Membership.AdminUpdateTier)

		admin.POST("/missions", h.Mission.AdminCreate)
		admin.PUT("/missions/:id", h.Mission.AdminUpdate)

		admin.GET("/withdrawals", h.Withdrawal.AdminPending)
		admin.POST("/withdrawals/:id/resolve", h.Withdrawal.AdminResolve)
	}

	return r
}

func corsMiddleware(origins string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins == "*" {
		conf.AllowAllOrigins = true
		conf.AllowCredentials = false
	} else {
		conf.AllowOrigins = strings.Split(origins, ",")
	}
	return cors.New(conf)
}

// requestLogger writes one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request")
		} else {
			entry.Info("request")
		}
	}
}
