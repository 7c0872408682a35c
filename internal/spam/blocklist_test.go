package spam

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBlocklistPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blocked.db")
	ctx := context.Background()

	bl, err := NewBlocklist(dbPath, zap.NewNop())
	require.NoError(t, err)

	added, err := bl.Add(ctx, "Shady Seller")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = bl.Add(ctx, "shadyseller") // normalized duplicate
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, bl.Close())

	reopened, err := NewBlocklist(dbPath, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.Contains("SHADY SELLER"))
	assert.Equal(t, 1, reopened.Count())
}

func TestBlocklistRemove(t *testing.T) {
	bl, err := NewBlocklist(filepath.Join(t.TempDir(), "blocked.db"), zap.NewNop())
	require.NoError(t, err)
	defer bl.Close()
	ctx := context.Background()

	_, err = bl.Add(ctx, "seller-a")
	require.NoError(t, err)

	removed, err := bl.Remove(ctx, "seller-a")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, bl.Contains("seller-a"))

	removed, err = bl.Remove(ctx, "seller-a")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestBlocklistImportAndExport(t *testing.T) {
	bl, err := NewBlocklist(filepath.Join(t.TempDir(), "blocked.db"), zap.NewNop())
	require.NoError(t, err)
	defer bl.Close()
	ctx := context.Background()

	added, skipped, err := bl.Import(ctx, []string{"zeta", "alpha", "Alpha"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)

	all, err := bl.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, all)
}
