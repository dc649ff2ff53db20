package formations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// Update replaces the formation. The professor set becomes exactly
// professorIds; links not listed are dropped.
func (h *Handler) Update(c *gin.Context) {
	fid, err := id(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	in, err := bind(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	f, err := h.store.UpdateFormation(c.Request.Context(), fid, in)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.Formation(*f, h.md))
}
