package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStockRepository_UnknownRecipeReadsZero(t *testing.T) {
	db := NewTestDB(t)
	repo := NewStockRepository(db)

	snap, err := repo.Query(context.Background(), "MASF16")
	require.NoError(t, err)
	require.Equal(t, "MASF16", snap.RecipeRef)
	require.Equal(t, 0.0, snap.Available)
	require.Equal(t, 0.0, snap.Required)
}

func TestStockRepository_SetAvailableAndAddRequired(t *testing.T) {
	db := NewTestDB(t)
	repo := NewStockRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetAvailable(ctx, "MASF16", 200))
	require.NoError(t, repo.AddRequired(ctx, "MASF16", 550))
	require.NoError(t, repo.AddRequired(ctx, "MASF16", 150))

	snap, err := repo.Query(ctx, "MASF16")
	require.NoError(t, err)
	require.Equal(t, 200.0, snap.Available)
	require.Equal(t, 700.0, snap.Required)
}

func TestStockRepository_SetAvailableKeepsRequired(t *testing.T) {
	db := NewTestDB(t)
	repo := NewStockRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddRequired(ctx, "BA16", 300))
	require.NoError(t, repo.SetAvailable(ctx, "BA16", 500))

	snap, err := repo.Query(ctx, "BA16")
	require.NoError(t, err)
	require.Equal(t, 500.0, snap.Available)
	require.Equal(t, 300.0, snap.Required)
}
