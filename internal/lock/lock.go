// Package lock serializes janitor passes across replicas with a MySQL named
// lock held on one pinned connection.
package lock

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Jeomhps/formation-admin/internal/db"
)

// ErrHeld means another session owns the lock. Callers skip the pass.
var ErrHeld = errors.New("lock held by another session")

// Lock is a named lock owned by conn until Release.
type Lock struct {
	conn *sqlx.Conn
	name string
}

// Acquire takes name, waiting up to wait (0 fails at once when held). The
// lock belongs to the connection, so it is kept out of the pool until
// Release.
func Acquire(ctx context.Context, d *db.DB, name string, wait time.Duration) (*Lock, error) {
	conn, err := d.Connx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "lock: reserve connection")
	}

	qctx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, wait+500*time.Millisecond)
		defer cancel()
	}

	// 1 taken, 0 timed out, NULL on error (killed thread, out of memory)
	var got sql.NullInt64
	if err := conn.GetContext(qctx, &got, "SELECT GET_LOCK(?, ?)", name, int(wait/time.Second)); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "lock %q", name)
	}
	switch {
	case !got.Valid:
		_ = conn.Close()
		return nil, errors.Errorf("lock %q: GET_LOCK returned NULL", name)
	case got.Int64 != 1:
		_ = conn.Close()
		return nil, ErrHeld
	}
	return &Lock{conn: conn, name: name}, nil
}

// Release frees the lock and returns the connection to the pool. Closing
// the connection alone would also drop the lock on the server.
func (l *Lock) Release() error {
	if l == nil || l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", l.name)
	if cerr := l.conn.Close(); err == nil {
		err = cerr
	}
	l.conn = nil
	return errors.Wrapf(err, "release lock %q", l.name)
}
