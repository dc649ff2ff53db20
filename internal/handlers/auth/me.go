package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
	"github.com/Jeomhps/formation-admin/internal/middleware"
)

// Me returns the identity carried by the session token.
func (h *Handler) Me(c *gin.Context) {
	claims, err := h.tokens.Verify(middleware.TokenFromRequest(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":    claims.UserID,
		"email":     claims.Email,
		"issuedAt":  common.FormatTime(claims.IssuedAt.Time),
		"expiresAt": common.FormatTime(claims.ExpiresAt.Time),
	})
}
