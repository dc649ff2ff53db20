// Package pages serves the admin single-page app shell.
package pages

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Handler serves STATIC_DIR/index.html for every app route. The client-side
// router takes over from there.
type Handler struct{ dir string }

func New(dir string) *Handler { return &Handler{dir: dir} }

func (h *Handler) Index(c *gin.Context) {
	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.String(http.StatusOK, "formation-admin")
		return
	}
	c.File(index)
}
