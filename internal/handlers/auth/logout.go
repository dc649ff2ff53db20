package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Logout expires the session cookie. Tokens are stateless, so a copy kept
// elsewhere stays valid until it expires.
func (h *Handler) Logout(c *gin.Context) {
	h.clearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
