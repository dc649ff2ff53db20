package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	"github.com/Jeomhps/formation-admin/internal/db"
)

const formationNotFound = "Formation not found"

// Formation is a formation row with its professors.
type Formation struct {
	db.Formation
	Professors []db.Professor
}

type FormationInput struct {
	Title         string
	StartDate     time.Time
	EndDate       time.Time
	Duration      *int
	Location      string
	ClassSize     *int
	Prerequisites string
	Description   string
	Detail        string
	Images        []string
	ProfessorIDs  []int64
}

func (s *Store) ListFormations(ctx context.Context) ([]Formation, error) {
	var rows []db.Formation
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM formations ORDER BY start_date ASC, id ASC"); err != nil {
		return nil, apperr.Internal(err, "list formations")
	}
	ids := make([]int64, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.ID)
	}
	links, err := s.professorsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Formation, 0, len(rows))
	for _, f := range rows {
		out = append(out, Formation{Formation: f, Professors: nonNil(links[f.ID])})
	}
	return out, nil
}

func (s *Store) GetFormation(ctx context.Context, id int64) (*Formation, error) {
	var f db.Formation
	if err := s.db.GetContext(ctx, &f, "SELECT * FROM formations WHERE id=?", id); err != nil {
		return nil, classify(err, formationNotFound, "load formation")
	}
	links, err := s.professorsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return &Formation{Formation: f, Professors: nonNil(links[id])}, nil
}

// CreateFormation inserts the formation and links the given professors.
// An unknown professor id fails the whole call with a validation error.
func (s *Store) CreateFormation(ctx context.Context, in FormationInput) (*Formation, error) {
	var id int64
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO formations (title,start_date,end_date,duration,location,class_size,prerequisites,description,detail,images)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
			in.Title, in.StartDate.UTC(), in.EndDate.UTC(), in.Duration, in.Location, in.ClassSize,
			in.Prerequisites, in.Description, in.Detail, db.StringList(in.Images))
		if err != nil {
			return apperr.Internal(err, "create formation")
		}
		if id, err = res.LastInsertId(); err != nil {
			return apperr.Internal(err, "create formation")
		}
		return linkProfessors(ctx, tx, id, in.ProfessorIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetFormation(ctx, id)
}

// UpdateFormation replaces the scalar fields and images, then clears every
// professor link and reconnects exactly in.ProfessorIDs.
func (s *Store) UpdateFormation(ctx context.Context, id int64, in FormationInput) (*Formation, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := mustExist(ctx, tx, "formations", id, formationNotFound); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
UPDATE formations SET title=?, start_date=?, end_date=?, duration=?, location=?, class_size=?,
	prerequisites=?, description=?, detail=?, images=?
WHERE id=?`,
			in.Title, in.StartDate.UTC(), in.EndDate.UTC(), in.Duration, in.Location, in.ClassSize,
			in.Prerequisites, in.Description, in.Detail, db.StringList(in.Images), id)
		if err != nil {
			return apperr.Internal(err, "update formation")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM formation_professors WHERE formation_id=?", id); err != nil {
			return apperr.Internal(err, "clear formation professors")
		}
		return linkProfessors(ctx, tx, id, in.ProfessorIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetFormation(ctx, id)
}

// DeleteFormation removes the formation; its professor links cascade.
func (s *Store) DeleteFormation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM formations WHERE id=?", id)
	if err != nil {
		return apperr.Internal(err, "delete formation")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(formationNotFound)
	}
	return nil
}

// ReferencedImages returns every image URL a formation or professor points at.
func (s *Store) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	out := map[string]struct{}{}

	var lists []db.StringList
	if err := s.db.SelectContext(ctx, &lists, "SELECT images FROM formations"); err != nil {
		return nil, apperr.Internal(err, "load formation images")
	}
	for _, l := range lists {
		for _, u := range l {
			out[u] = struct{}{}
		}
	}

	var singles []string
	if err := s.db.SelectContext(ctx, &singles, "SELECT image FROM professors"); err != nil {
		return nil, apperr.Internal(err, "load professor images")
	}
	for _, u := range singles {
		if u != "" {
			out[u] = struct{}{}
		}
	}
	return out, nil
}

func linkProfessors(ctx context.Context, tx *sqlx.Tx, formationID int64, professorIDs []int64) error {
	ids := dedupe(professorIDs)
	if len(ids) == 0 {
		return nil
	}

	q, args, err := sqlx.In("SELECT id FROM professors WHERE id IN (?)", ids)
	if err != nil {
		return apperr.Internal(err, "check professors")
	}
	var found []int64
	if err := tx.SelectContext(ctx, &found, tx.Rebind(q), args...); err != nil {
		return apperr.Internal(err, "check professors")
	}
	if len(found) != len(ids) {
		known := make(map[int64]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range ids {
			if !known[id] {
				return apperr.Validation("Unknown professor", map[string]string{
					"professorIds": fmt.Sprintf("professor %d does not exist", id),
				})
			}
		}
	}

	for _, pid := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO formation_professors (formation_id, professor_id) VALUES (?,?)", formationID, pid); err != nil {
			if isForeignKey(err) {
				return apperr.Validation("Unknown professor", map[string]string{
					"professorIds": fmt.Sprintf("professor %d does not exist", pid),
				})
			}
			return apperr.Internal(err, "link professor")
		}
	}
	return nil
}

type professorLink struct {
	OwnerID int64 `db:"owner_id"`
	db.Professor
}

func (s *Store) professorsFor(ctx context.Context, formationIDs []int64) (map[int64][]db.Professor, error) {
	out := map[int64][]db.Professor{}
	if len(formationIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
SELECT fp.formation_id AS owner_id, p.*
FROM formation_professors fp
JOIN professors p ON p.id = fp.professor_id
WHERE fp.formation_id IN (?)
ORDER BY p.id ASC`, formationIDs)
	if err != nil {
		return nil, apperr.Internal(err, "load formation professors")
	}
	var rows []professorLink
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, apperr.Internal(err, "load formation professors")
	}
	for _, r := range rows {
		out[r.OwnerID] = append(out[r.OwnerID], r.Professor)
	}
	return out, nil
}
