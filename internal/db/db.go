package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Jeomhps/formation-admin/internal/auth"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

type DB struct {
	*sqlx.DB
	Driver string
}

// Options tunes Open. Zero values pick sensible defaults.
type Options struct {
	// PingAttempts is the number of one-second-spaced pings before giving up.
	PingAttempts int
}

// Open connects, waits for the server and ensures the schema exists.
func Open(driver, dsn string, opts Options) (*DB, error) {
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	xdb, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// every :memory: connection is its own database
		xdb.SetMaxOpenConns(1)
		xdb.SetConnMaxLifetime(0)
	} else {
		xdb.SetConnMaxLifetime(2 * time.Hour)
		xdb.SetMaxIdleConns(10)
		xdb.SetMaxOpenConns(50)
	}

	attempts := opts.PingAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; ; i++ {
		err = xdb.Ping()
		if err == nil {
			break
		}
		if i+1 >= attempts {
			_ = xdb.Close()
			return nil, fmt.Errorf("database not reachable: %w", err)
		}
		time.Sleep(time.Second)
	}

	d := &DB{DB: xdb, Driver: driver}
	if err := d.ensureSchema(context.Background()); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error { return d.DB.Close() }

// sqliteDSN turns foreign keys on for every connection the driver opens,
// not just the one that ran the schema.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// EnsureDefaultAdmin creates the account if missing, or resets its password.
func EnsureDefaultAdmin(ctx context.Context, d *DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int
	if err := d.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE email=?", email); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if count == 0 {
		_, err = d.ExecContext(ctx, "INSERT INTO users (email, name, password_hash) VALUES (?,?,?)", email, "Administrator", hash)
		return err
	}
	_, err = d.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE email=?", hash, email)
	return err
}

// Dev-time schema (inline DDL). Both link columns cascade so that neither a
// formation nor a professor delete is ever blocked by the join table.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS professors (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		image TEXT NOT NULL,
		profile TEXT NOT NULL,
		certificates JSON NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS formations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		duration INT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		class_size INT NULL,
		prerequisites TEXT NOT NULL,
		description TEXT NOT NULL,
		detail TEXT NOT NULL,
		images JSON NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS formation_professors (
		formation_id BIGINT NOT NULL,
		professor_id BIGINT NOT NULL,
		PRIMARY KEY (formation_id, professor_id),
		INDEX (professor_id),
		CONSTRAINT fk_fp_formation FOREIGN KEY (formation_id) REFERENCES formations(id) ON DELETE CASCADE,
		CONSTRAINT fk_fp_professor FOREIGN KEY (professor_id) REFERENCES professors(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,

	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS professors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		image TEXT NOT NULL,
		profile TEXT NOT NULL,
		certificates TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE TABLE IF NOT EXISTS formations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		duration INTEGER NULL,
		location TEXT NOT NULL DEFAULT '',
		class_size INTEGER NULL,
		prerequisites TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		images TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE TABLE IF NOT EXISTS formation_professors (
		formation_id INTEGER NOT NULL REFERENCES formations(id) ON DELETE CASCADE,
		professor_id INTEGER NOT NULL REFERENCES professors(id) ON DELETE CASCADE,
		PRIMARY KEY (formation_id, professor_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_fp_professor ON formation_professors (professor_id)`,
}

func (d *DB) ensureSchema(ctx context.Context) error {
	stmts := mysqlSchema
	if d.Driver == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, s := range stmts {
		if _, err := d.DB.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
