package professors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

func (h *Handler) Get(c *gin.Context) {
	pid, err := id(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	p, err := h.store.GetProfessor(c.Request.Context(), pid)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.Professor(*p))
}
