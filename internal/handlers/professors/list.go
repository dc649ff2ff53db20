package professors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// List returns every professor with the formations they teach.
func (h *Handler) List(c *gin.Context) {
	ps, err := h.store.ListProfessors(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(ps))
	for _, p := range ps {
		out = append(out, common.Professor(p))
	}
	c.JSON(http.StatusOK, out)
}
