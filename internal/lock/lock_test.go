package lock

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeomhps/formation-admin/internal/db"
)

// fakeServer stands in for MySQL's named lock table.
var fakeServer = struct {
	sync.Mutex
	held map[string]bool
}{held: map[string]bool{}}

func getLock(name string, timeout int64) (int64, error) {
	if name == "broken" {
		return 0, errors.New("lock service down")
	}
	fakeServer.Lock()
	defer fakeServer.Unlock()
	if fakeServer.held[name] {
		return 0, nil
	}
	fakeServer.held[name] = true
	return 1, nil
}

func releaseLock(name string) int64 {
	fakeServer.Lock()
	defer fakeServer.Unlock()
	delete(fakeServer.held, name)
	return 1
}

func init() {
	sql.Register("sqlite3_named_locks", &sqlite3.SQLiteDriver{
		ConnectHook: func(c *sqlite3.SQLiteConn) error {
			if err := c.RegisterFunc("GET_LOCK", getLock, false); err != nil {
				return err
			}
			return c.RegisterFunc("RELEASE_LOCK", releaseLock, false)
		},
	})
}

func openLockDB(t *testing.T) *db.DB {
	t.Helper()
	x, err := sqlx.Open("sqlite3_named_locks", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return &db.DB{DB: x, Driver: db.DriverMySQL}
}

func TestAcquireRelease(t *testing.T) {
	d := openLockDB(t)
	ctx := context.Background()

	l, err := Acquire(ctx, d, "image-janitor", 0)
	require.NoError(t, err)

	_, err = Acquire(ctx, d, "image-janitor", 0)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, l.Release())
	// second release is a no-op
	require.NoError(t, l.Release())

	l, err = Acquire(ctx, d, "image-janitor", 0)
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestAcquireQueryError(t *testing.T) {
	d := openLockDB(t)

	_, err := Acquire(context.Background(), d, "broken", 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrHeld))
	assert.Contains(t, err.Error(), `lock "broken"`)
}
