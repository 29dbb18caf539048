package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avasiliu/plantops/internal/domain/order"
)

// StockRepository is the local stock oracle: available raw material per
// recipe versus the requirement committed by reservations. Availability is
// fed by the receiving module of the dashboard.
type StockRepository struct {
	db *DB
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(db *DB) *StockRepository {
	return &StockRepository{db: db}
}

// Query returns the snapshot for a recipe. An unknown recipe reads as
// zero available, zero required.
func (r *StockRepository) Query(ctx context.Context, recipeRef string) (order.StockSnapshot, error) {
	snap := order.StockSnapshot{RecipeRef: recipeRef}
	err := r.db.QueryRowContext(ctx,
		`SELECT available, required FROM stock WHERE recipe_ref = ?`,
		recipeRef,
	).Scan(&snap.Available, &snap.Required)
	if err == sql.ErrNoRows {
		return snap, nil
	}
	if err != nil {
		return order.StockSnapshot{}, fmt.Errorf("failed to query stock: %w", err)
	}
	return snap, nil
}

// AddRequired commits qty tonnes of a recipe against the required accounting.
func (r *StockRepository) AddRequired(ctx context.Context, recipeRef string, qty float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock (recipe_ref, available, required) VALUES (?, 0, ?)
		ON CONFLICT(recipe_ref) DO UPDATE SET required = required + excluded.required
	`, recipeRef, qty)
	if err != nil {
		return fmt.Errorf("failed to add required stock: %w", err)
	}
	return nil
}

// SetAvailable records the on-hand quantity for a recipe.
func (r *StockRepository) SetAvailable(ctx context.Context, recipeRef string, qty float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock (recipe_ref, available, required) VALUES (?, ?, 0)
		ON CONFLICT(recipe_ref) DO UPDATE SET available = excluded.available
	`, recipeRef, qty)
	if err != nil {
		return fmt.Errorf("failed to set available stock: %w", err)
	}
	return nil
}
