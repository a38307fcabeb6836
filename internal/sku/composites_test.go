package sku

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCompositeTable(t *testing.T) {
	t.Run("loads mappings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "composites.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"AN": ["AF", "NL"]}`), 0644))

		table, err := LoadCompositeTable(path)
		require.NoError(t, err)

		token, ok := table.Combine([]string{"AF", "NL"})
		require.True(t, ok)
		assert.Equal(t, "AN", token)
	})

	t.Run("missing file yields empty table", func(t *testing.T) {
		table, err := LoadCompositeTable(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		_, ok := table.Combine([]string{"AF", "NL"})
		assert.False(t, ok)
	})

	t.Run("rejects malformed entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "composites.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"AN": ["AF"]}`), 0644))
		_, err := LoadCompositeTable(path)
		assert.Error(t, err)

		require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))
		_, err = LoadCompositeTable(path)
		assert.Error(t, err)
	})
}
