package professors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// Update replaces every field; a missing certificates array clears it.
func (h *Handler) Update(c *gin.Context) {
	pid, err := id(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	in, err := bind(c, false)
	if err != nil {
		common.Fail(c, err)
		return
	}
	p, err := h.store.UpdateProfessor(c.Request.Context(), pid, in)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.Professor(*p))
}
