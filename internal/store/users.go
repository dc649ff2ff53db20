package store

import (
	"context"
	"strings"

	"github.com/Jeomhps/formation-admin/internal/apperr"
	"github.com/Jeomhps/formation-admin/internal/db"
)

// CreateUser stores a new account. A taken email is a Conflict.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*db.User, error) {
	email = strings.TrimSpace(email)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash) VALUES (?,?,?)", email, name, passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return nil, apperr.Wrap(apperr.KindConflict, err, "Email already registered")
		}
		return nil, apperr.Internal(err, "create user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, apperr.Internal(err, "create user")
	}
	return s.UserByID(ctx, id)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE email=?", strings.TrimSpace(email))
	if err != nil {
		return nil, classify(err, "User not found", "load user")
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*db.User, error) {
	var u db.User
	if err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE id=?", id); err != nil {
		return nil, classify(err, "User not found", "load user")
	}
	return &u, nil
}
