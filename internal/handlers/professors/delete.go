package professors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
)

// Delete removes one professor. Formations it taught are kept.
func (h *Handler) Delete(c *gin.Context) {
	pid, err := id(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if err := h.store.DeleteProfessor(c.Request.Context(), pid); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professor deleted"})
}

// DeleteAll removes every professor.
func (h *Handler) DeleteAll(c *gin.Context) {
	n, err := h.store.DeleteAllProfessors(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All professors deleted", "count": n})
}
