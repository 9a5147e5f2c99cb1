package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-waterres-client/kvstore"
	"github.com/jrsteele09/go-waterres-client/kvstore/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := sqlitestore.Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "water_resources_token")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "water_resources_token", "a.b.c"))
	require.NoError(t, s.Set(ctx, "water_resources_token", "x.y.z"))
	require.Error(t, s.Set(ctx, "", "v"))
	require.NoError(t, s.Close())

	reopened, err := sqlitestore.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(ctx, "water_resources_token")
	require.NoError(t, err)
	require.Equal(t, "x.y.z", v)

	require.NoError(t, reopened.Delete(ctx, "water_resources_token"))
	require.NoError(t, reopened.Delete(ctx, "water_resources_token"))
	_, err = reopened.Get(ctx, "water_resources_token")
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}
