package formations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

func (h *Handler) Get(c *gin.Context) {
	fid, err := id(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	f, err := h.store.GetFormation(c.Request.Context(), fid)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.Formation(*f, h.md))
}
