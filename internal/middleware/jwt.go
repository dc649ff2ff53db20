package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/auth"
)

// CookieName is the HTTP-only cookie that carries the session token.
const CookieName = "token"

// Context keys set once a request is authenticated.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxClaims = "claims"
)

// TokenFromRequest prefers the session cookie and falls back to an
// Authorization: Bearer header for non-browser clients.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// JWTAuth rejects the request with 401 unless it carries a valid token.
func JWTAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tm.Verify(TokenFromRequest(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by JWTAuth, if any.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
