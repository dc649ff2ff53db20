package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	"github.com/Jeomhps/formation-admin/internal/db"
)

const professorNotFound = "Professor not found"

// Professor is a professor row with the formations it teaches.
type Professor struct {
	db.Professor
	Formations []db.Formation
}

type ProfessorInput struct {
	FirstName    string
	LastName     string
	Image        string
	Profile      string
	Certificates []string
}

func (s *Store) ListProfessors(ctx context.Context) ([]Professor, error) {
	var rows []db.Professor
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM professors ORDER BY id ASC"); err != nil {
		return nil, apperr.Internal(err, "list professors")
	}
	ids := make([]int64, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	links, err := s.formationsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Professor, 0, len(rows))
	for _, p := range rows {
		out = append(out, Professor{Professor: p, Formations: nonNil(links[p.ID])})
	}
	return out, nil
}

func (s *Store) GetProfessor(ctx context.Context, id int64) (*Professor, error) {
	var p db.Professor
	if err := s.db.GetContext(ctx, &p, "SELECT * FROM professors WHERE id=?", id); err != nil {
		return nil, classify(err, professorNotFound, "load professor")
	}
	links, err := s.formationsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return &Professor{Professor: p, Formations: nonNil(links[id])}, nil
}

func (s *Store) CreateProfessor(ctx context.Context, in ProfessorInput) (*Professor, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO professors (first_name,last_name,image,profile,certificates) VALUES (?,?,?,?,?)`,
		in.FirstName, in.LastName, in.Image, in.Profile, db.StringList(in.Certificates))
	if err != nil {
		return nil, classify(err, professorNotFound, "create professor")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Internal(err, "create professor")
	}
	return s.GetProfessor(ctx, id)
}

// UpdateProfessor replaces every scalar field. Links to formations are kept.
func (s *Store) UpdateProfessor(ctx context.Context, id int64, in ProfessorInput) (*Professor, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		// MySQL reports zero affected rows for a no-op update, so check first.
		if err := mustExist(ctx, tx, "professors", id, professorNotFound); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE professors SET first_name=?, last_name=?, image=?, profile=?, certificates=? WHERE id=?`,
			in.FirstName, in.LastName, in.Image, in.Profile, db.StringList(in.Certificates), id)
		if err != nil {
			return apperr.Internal(err, "update professor")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfessor(ctx, id)
}

// DeleteProfessor removes the professor; its formation links cascade.
func (s *Store) DeleteProfessor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM professors WHERE id=?", id)
	if err != nil {
		return apperr.Internal(err, "delete professor")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound(professorNotFound)
	}
	return nil
}

// DeleteAllProfessors is an unrestricted bulk delete.
func (s *Store) DeleteAllProfessors(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM professors")
	if err != nil {
		return 0, apperr.Internal(err, "delete professors")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type formationLink struct {
	OwnerID int64 `db:"owner_id"`
	db.Formation
}

func (s *Store) formationsFor(ctx context.Context, professorIDs []int64) (map[int64][]db.Formation, error) {
	out := map[int64][]db.Formation{}
	if len(professorIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
SELECT fp.professor_id AS owner_id, f.*
FROM formation_professors fp
JOIN formations f ON f.id = fp.formation_id
WHERE fp.professor_id IN (?)
ORDER BY f.id ASC`, professorIDs)
	if err != nil {
		return nil, apperr.Internal(err, "load professor formations")
	}
	var rows []formationLink
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, apperr.Internal(err, "load professor formations")
	}
	for _, r := range rows {
		out[r.OwnerID] = append(out[r.OwnerID], r.Formation)
	}
	return out, nil
}

func mustExist(ctx context.Context, q sqlx.QueryerContext, table string, id int64, notFound string) error {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM "+table+" WHERE id=?", id); err != nil {
		return apperr.Internal(err, "lookup "+table)
	}
	if n == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
