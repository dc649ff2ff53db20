// Package professors provides professor CRUD HTTP handlers.
// KISS: the handler type and request body live here, one file per verb.
package professors

import (
	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/handlers/common"
	"github.com/Jeomhps/formation-admin/internal/store"
)

// Handler wires professor endpoints to the data store.
type Handler struct{ store *store.Store }

func New(s *store.Store) *Handler { return &Handler{store: s} }

type request struct {
	FirstName    string   `json:"firstName" binding:"required"`
	LastName     string   `json:"lastName" binding:"required"`
	Image        string   `json:"image" binding:"required"`
	Profile      string   `json:"profile" binding:"required"`
	Certificates []string `json:"certificates"`
}

// bind decodes the body. requireCerts makes a missing certificates array a
// validation failure (create); update treats it as empty.
func bind(c *gin.Context, requireCerts bool) (store.ProfessorInput, error) {
	var in request
	if err := c.ShouldBindJSON(&in); err != nil {
		return store.ProfessorInput{}, common.BindError(err, "Missing required fields or certificates is not an array")
	}
	if in.Certificates == nil {
		if requireCerts {
			return store.ProfessorInput{}, common.ValidationField(
				"Missing required fields or certificates is not an array", "certificates", "is required")
		}
		in.Certificates = []string{}
	}
	return store.ProfessorInput{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Image:        in.Image,
		Profile:      in.Profile,
		Certificates: in.Certificates,
	}, nil
}

func id(c *gin.Context) (int64, error) {
	return common.ParseID(c.Param("id"), "professor")
}
