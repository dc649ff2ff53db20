// Package formations provides formation CRUD HTTP handlers.
//
// This file defines the handler type, constructor and the shared request
// body. The HTTP methods live in list.go, get.go, create.go, update.go and
// delete.go.
package formations

import (
	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	"github.com/Jeomhps/formation-admin/internal/handlers/common"
	"github.com/Jeomhps/formation-admin/internal/render"
	"github.com/Jeomhps/formation-admin/internal/store"
)

// Handler wires formation endpoints to the data store.
type Handler struct {
	store *store.Store
	md    *render.Markdown
}

func New(s *store.Store, md *render.Markdown) *Handler {
	return &Handler{store: s, md: md}
}

// request is the body accepted by create and update. professorIds must be
// present but may be empty.
type request struct {
	Title         string         `json:"title" binding:"required"`
	StartDate     *common.Date   `json:"startDate" binding:"required"`
	EndDate       *common.Date   `json:"endDate" binding:"required"`
	Duration      common.FlexInt `json:"duration"`
	Location      string         `json:"location"`
	ClassSize     common.FlexInt `json:"classSize"`
	Prerequisites string         `json:"prerequisites"`
	Description   string         `json:"description"`
	Detail        string         `json:"detail"`
	Images        []string       `json:"images"`
	ProfessorIDs  []int64        `json:"professorIds" binding:"required"`
}

func bind(c *gin.Context) (store.FormationInput, error) {
	var in request
	if err := c.ShouldBindJSON(&in); err != nil {
		return store.FormationInput{}, common.BindError(err, "Missing required fields")
	}
	if in.EndDate.Before(in.StartDate.Time) {
		return store.FormationInput{}, apperr.Validation("Invalid dates", map[string]string{
			"endDate": "must not be before startDate",
		})
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return store.FormationInput{
		Title:         in.Title,
		StartDate:     in.StartDate.Time,
		EndDate:       in.EndDate.Time,
		Duration:      in.Duration.Ptr(),
		Location:      in.Location,
		ClassSize:     in.ClassSize.Ptr(),
		Prerequisites: in.Prerequisites,
		Description:   in.Description,
		Detail:        in.Detail,
		Images:        images,
		ProfessorIDs:  in.ProfessorIDs,
	}, nil
}

// id reads the formation id from the path (/formations/:id) or, for the
// collection routes, from ?id=.
func id(c *gin.Context) (int64, error) {
	return common.ParseID(common.FirstNonEmpty(c.Param("id"), c.Query("id")), "formation")
}
