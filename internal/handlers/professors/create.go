package professors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

func (h *Handler) Create(c *gin.Context) {
	in, err := bind(c, true)
	if err != nil {
		common.Fail(c, err)
		return
	}
	p, err := h.store.CreateProfessor(c.Request.Context(), in)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.Professor(*p))
}
