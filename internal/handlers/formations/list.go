package formations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// List returns every formation with its professors. With ?id= it behaves
// like Get.
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		h.Get(c)
		return
	}
	fs, err := h.store.ListFormations(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(fs))
	for _, f := range fs {
		out = append(out, common.Formation(f, h.md))
	}
	c.JSON(http.StatusOK, out)
}
