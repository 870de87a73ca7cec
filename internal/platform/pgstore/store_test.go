package pgstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofinco/backoffice/internal/domain/document"
)

type testRow struct {
	body []byte
	err  error
}

func (r testRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = append([]byte(nil), r.body...)
	return nil
}

// testDB emulates the documents table with a map
type testDB struct {
	rows    map[string][]byte
	execs   []string
	execErr error
}

func newTestDB() *testDB {
	return &testDB{rows: make(map[string][]byte)}
}

func (db *testDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	body, ok := db.rows[args[0].(string)]
	if !ok {
		return testRow{err: pgx.ErrNoRows}
	}
	return testRow{body: body}
}

func (db *testDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, sql)
	if db.execErr != nil {
		return pgconn.CommandTag{}, db.execErr
	}
	if strings.HasPrefix(sql, "INSERT") {
		db.rows[args[0].(string)] = args[1].([]byte)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func TestStorage(t *testing.T) {
	t.Run("ensure schema issues create table", func(t *testing.T) {
		db := newTestDB()
		require.NoError(t, New(db, "backoffice").EnsureSchema(context.Background()))
		require.Len(t, db.execs, 1)
		assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS backoffice_documents")
	})

	t.Run("missing row reports no document", func(t *testing.T) {
		_, err := New(newTestDB(), "backoffice").Read(context.Background())
		assert.ErrorIs(t, err, document.ErrNoDocument)
	})

	t.Run("repository round trip", func(t *testing.T) {
		db := newTestDB()
		repo := document.NewJSONRepository(New(db, "backoffice"))

		doc, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Contains(t, db.rows, "backoffice")

		doc.Settings.OTP.TTLSeconds = 300
		require.NoError(t, repo.Save(context.Background(), doc))

		loaded, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 300, loaded.Settings.OTP.TTLSeconds)
	})

	t.Run("exec errors are wrapped", func(t *testing.T) {
		db := newTestDB()
		db.execErr = errors.New("read only transaction")

		err := New(db, "backoffice").Write(context.Background(), []byte("{}"))
		assert.ErrorContains(t, err, "read only transaction")
	})
}
