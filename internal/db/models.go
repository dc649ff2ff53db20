package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Domain models (column names must match the schema)

type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Professor struct {
	ID           int64      `db:"id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Image        string     `db:"image"`
	Profile      string     `db:"profile"`
	Certificates StringList `db:"certificates"`
}

type Formation struct {
	ID            int64      `db:"id"`
	Title         string     `db:"title"`
	StartDate     time.Time  `db:"start_date"`
	EndDate       time.Time  `db:"end_date"`
	Duration      *int       `db:"duration"`
	Location      string     `db:"location"`
	ClassSize     *int       `db:"class_size"`
	Prerequisites string     `db:"prerequisites"`
	Description   string     `db:"description"`
	Detail        string     `db:"detail"`
	Images        StringList `db:"images"`
}

// StringList is an ordered list of strings stored as a JSON array column.
// A nil list is written as [] so the column never holds NULL.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported source %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}
