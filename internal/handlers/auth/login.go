package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	jwtauth "github.com/Jeomhps/formation-admin/internal/auth"
	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// Login checks the credentials and sets the session cookie.
// An unknown email is a 404 and a wrong password a 401.
func (h *Handler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		common.Fail(c, common.BindError(err, "Email and password are required"))
		return
	}

	u, err := h.store.UserByEmail(c.Request.Context(), in.Email)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if jwtauth.CheckPassword(u.PasswordHash, in.Password) != nil {
		common.Fail(c, apperr.New(apperr.KindAuth, "Invalid password"))
		return
	}

	tok, _, err := h.tokens.Issue(u.ID, u.Email)
	if err != nil {
		common.Fail(c, err)
		return
	}
	h.setCookie(c, tok, h.tokens.TTL())
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}
