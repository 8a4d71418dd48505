// Package middleware holds the HTTP middleware: JWT auth, per-client
// rate limiting and request metrics.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID  = "auth_user_id"
	ctxIsAdmin = "auth_is_admin"
)

type claims struct {
	IsAdmin bool   `json:"adm,omitempty"`
	Kind    string `json:"knd,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager issues and parses access and refresh tokens.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue returns an access token and a refresh token for the user.
func (m *JWTManager) Issue(userID int64, isAdmin bool) (access, refresh string, err error) {
	access, err = m.sign(userID, isAdmin, "access", m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.sign(userID, isAdmin, "refresh", m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *JWTManager) sign(userID int64, isAdmin bool, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		IsAdmin: isAdmin,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *JWTManager) parse(tokenString, wantKind string) (*claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if c.Kind != wantKind {
		return nil, errors.New("wrong token kind")
	}
	return c, nil
}

// Refresh exchanges a refresh token for a fresh access token.
func (m *JWTManager) Refresh(refreshToken string) (string, error) {
	c, err := m.parse(refreshToken, "refresh")
	if err != nil {
		return "", err
	}
	var userID int64
	if _, err := fmt.Sscanf(c.Subject, "%d", &userID); err != nil {
		return "", errors.New("invalid token subject")
	}
	return m.sign(userID, c.IsAdmin, "access", m.accessTTL)
}

// Auth validates the bearer token and stores the identity on the
// request context.
func Auth(m *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}

		cl, err := m.parse(strings.TrimPrefix(header, "Bearer "), "access")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var userID int64
		if _, err := fmt.Sscanf(cl.Subject, "%d", &userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxIsAdmin, cl.IsAdmin)
		c.Next()
	}
}

// AdminRequired rejects non-admin callers. Must run after Auth.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user, 0 when unauthenticated.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(ctxUserID)
	userID, _ := id.(int64)
	return userID
}

// IsAdmin reports whether the caller holds an admin token.
func IsAdmin(c *gin.Context) bool {
	v, _ := c.Get(ctxIsAdmin)
	isAdmin, _ := v.(bool)
	return isAdmin
}
