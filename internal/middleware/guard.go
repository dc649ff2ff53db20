package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/auth"
)

// LoginPath is where PageGuard sends anonymous visitors.
const LoginPath = "/auth/login"

// PageGuard protects HTML pages. Anonymous visitors are redirected to the
// login page with the original location in ?redirect= so they come back
// after signing in.
func PageGuard(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tm.Verify(TokenFromRequest(c))
		if err != nil {
			target := LoginPath + "?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}
