package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingFiles(t *testing.T) {
	files := fstest.MapFS{
		"sql/002_add_index.sql":      {Data: []byte("CREATE INDEX x ON y (z);")},
		"sql/001_initial_schema.sql": {Data: []byte("CREATE TABLE y (z INT);")},
		"sql/999_reset_all.sql":      {Data: []byte("DROP TABLE y;")},
		"sql/README.md":              {Data: []byte("notes")},
	}

	t.Run("fresh database", func(t *testing.T) {
		pending, err := PendingFiles(files, "sql", map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []string{"001_initial_schema.sql", "002_add_index.sql"}, pending)
	})

	t.Run("skips applied", func(t *testing.T) {
		pending, err := PendingFiles(files, "sql", map[string]bool{"001_initial_schema.sql": true})
		require.NoError(t, err)
		assert.Equal(t, []string{"002_add_index.sql"}, pending)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := PendingFiles(files, "nope", nil)
		assert.Error(t, err)
	})
}
