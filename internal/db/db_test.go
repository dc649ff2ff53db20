package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jeomhps/formation-admin/internal/auth"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(DriverSQLite, "file::memory:?_foreign_keys=on", Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestOpenCreatesSchema(t *testing.T) {
	d := openTestDB(t)

	for _, table := range []string{"users", "professors", "formations", "formation_professors"} {
		var n int
		err := d.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	// idempotent
	require.NoError(t, d.ensureSchema(context.Background()))
}

func TestEnsureDefaultAdmin(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureDefaultAdmin(ctx, d, "admin@example.org", "first"))
	require.NoError(t, EnsureDefaultAdmin(ctx, d, "admin@example.org", "second"))

	var users []User
	require.NoError(t, d.Select(&users, "SELECT * FROM users"))
	require.Len(t, users, 1)
	assert.NoError(t, auth.CheckPassword(users[0].PasswordHash, "second"))
	cost, err := bcrypt.Cost([]byte(users[0].PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, auth.PasswordCost, cost)

	// no-op without credentials
	assert.NoError(t, EnsureDefaultAdmin(ctx, d, "", ""))
}

func TestStringListRoundTrip(t *testing.T) {
	d := openTestDB(t)

	_, err := d.Exec(`INSERT INTO professors (first_name,last_name,image,profile,certificates) VALUES (?,?,?,?,?)`,
		"Ada", "Lovelace", "a.png", "math", StringList{"b", "a", "c"})
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO professors (first_name,last_name,image,profile,certificates) VALUES (?,?,?,?,?)`,
		"Alan", "Turing", "t.png", "cs", StringList(nil))
	require.NoError(t, err)

	var ps []Professor
	require.NoError(t, d.Select(&ps, "SELECT * FROM professors ORDER BY id"))
	require.Len(t, ps, 2)
	assert.Equal(t, StringList{"b", "a", "c"}, ps[0].Certificates)
	assert.Equal(t, StringList{}, ps[1].Certificates)
}

func TestStringListScanRejectsGarbage(t *testing.T) {
	var l StringList
	assert.Error(t, l.Scan("not json"))
	assert.Error(t, l.Scan(42))
	require.NoError(t, l.Scan(nil))
	assert.NotNil(t, l)
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN("file::memory:"))
	assert.Equal(t, "app.db?cache=shared&_foreign_keys=on", sqliteDSN("app.db?cache=shared"))
	assert.Equal(t, "app.db?_fk=1", sqliteDSN("app.db?_fk=1"))

	d, err := Open(DriverSQLite, "file::memory:", Options{})
	require.NoError(t, err)
	defer d.Close()

	// a fresh connection must come up with enforcement on
	d.SetMaxIdleConns(0)
	var on int
	require.NoError(t, d.Get(&on, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, on)
}
