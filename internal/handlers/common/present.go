package common

import (
	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/db"
	"github.com/Jeomhps/formation-admin/internal/render"
	"github.com/Jeomhps/formation-admin/internal/store"
)

// Response shaping. Keys follow the camelCase names the admin UI uses.

func FormationFields(f db.Formation) gin.H {
	return gin.H{
		"id":            f.ID,
		"title":         f.Title,
		"startDate":     FormatTime(f.StartDate),
		"endDate":       FormatTime(f.EndDate),
		"duration":      f.Duration,
		"location":      f.Location,
		"classSize":     f.ClassSize,
		"prerequisites": f.Prerequisites,
		"description":   f.Description,
		"detail":        f.Detail,
		"images":        []string(nonNilList(f.Images)),
	}
}

func ProfessorFields(p db.Professor) gin.H {
	return gin.H{
		"id":           p.ID,
		"firstName":    p.FirstName,
		"lastName":     p.LastName,
		"image":        p.Image,
		"profile":      p.Profile,
		"certificates": []string(nonNilList(p.Certificates)),
	}
}

// Formation includes the professors and the rendered description.
func Formation(f store.Formation, md *render.Markdown) gin.H {
	h := FormationFields(f.Formation)
	if md != nil {
		h["descriptionHtml"] = md.HTML(f.Description)
	}
	profs := make([]gin.H, 0, len(f.Professors))
	ids := make([]int64, 0, len(f.Professors))
	for _, p := range f.Professors {
		profs = append(profs, ProfessorFields(p))
		ids = append(ids, p.ID)
	}
	h["professors"] = profs
	h["professorIds"] = ids
	return h
}

func Professor(p store.Professor) gin.H {
	h := ProfessorFields(p.Professor)
	fs := make([]gin.H, 0, len(p.Formations))
	for _, f := range p.Formations {
		fs = append(fs, FormationFields(f))
	}
	h["formations"] = fs
	return h
}

func User(u db.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"email":     u.Email,
		"name":      u.Name,
		"createdAt": FormatTime(u.CreatedAt),
	}
}

func nonNilList(l db.StringList) db.StringList {
	if l == nil {
		return db.StringList{}
	}
	return l
}
