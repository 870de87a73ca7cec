package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofinco/backoffice/internal/domain/document"
)

func TestStorage(t *testing.T) {
	t.Run("missing file reports no document", func(t *testing.T) {
		s := New(filepath.Join(t.TempDir(), "db.json"))

		_, err := s.Read(context.Background())
		assert.ErrorIs(t, err, document.ErrNoDocument)
	})

	t.Run("write creates directories and leaves no temp file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "db.json")
		s := New(path)

		require.NoError(t, s.Write(context.Background(), []byte(`{"meta":{"version":"1.0.0"}}`)))

		body, err := s.Read(context.Background())
		require.NoError(t, err)
		assert.JSONEq(t, `{"meta":{"version":"1.0.0"}}`, string(body))

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("seeded document is persisted on first load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db.json")
		repo := document.NewJSONRepository(New(path))

		_, err := repo.Load(context.Background())
		require.NoError(t, err)

		body, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"chefA"`)
	})
}
