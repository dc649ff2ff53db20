package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	jwtauth "github.com/Jeomhps/formation-admin/internal/auth"
	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// Register creates an account. It does not log the caller in.
func (h *Handler) Register(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		common.Fail(c, common.BindError(err, "Invalid registration data"))
		return
	}

	hash, err := jwtauth.HashPassword(in.Password)
	if err != nil {
		common.Fail(c, apperr.Internal(err, "hash password"))
		return
	}
	u, err := h.store.CreateUser(c.Request.Context(), in.Email, in.Name, hash)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": common.User(*u)})
}
