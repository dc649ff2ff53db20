package formations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

func (h *Handler) Delete(c *gin.Context) {
	fid, err := id(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if err := h.store.DeleteFormation(c.Request.Context(), fid); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Formation deleted"})
}
