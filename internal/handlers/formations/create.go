package formations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

func (h *Handler) Create(c *gin.Context) {
	in, err := bind(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	f, err := h.store.CreateFormation(c.Request.Context(), in)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.Formation(*f, h.md))
}
