package order

import (
	"context"

	"github.com/avasiliu/plantops/internal/domain/activity"
)

// Repository provides persistence for scheduled orders.
type Repository interface {
	Create(ctx context.Context, o *ScheduledOrder) error
	Get(ctx context.Context, id string) (*ScheduledOrder, error)
	Update(ctx context.Context, o *ScheduledOrder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]ScheduledOrder, error)
}

// StockOracle answers raw-material availability questions for a recipe.
// Results are snapshots valid at query time only; never cache them across
// placements.
type StockOracle interface {
	Query(ctx context.Context, recipeRef string) (StockSnapshot, error)
	AddRequired(ctx context.Context, recipeRef string, qty float64) error
}

// Dispatcher hands a planned order off to the downstream dispatch system.
// Fire-and-forget: a failed notification never rolls the transition back.
type Dispatcher interface {
	NotifyDispatch(ctx context.Context, orderID string) error
}

// IDGenerator allocates scheduled-order identifiers.
type IDGenerator interface {
	Next() string
}

// ActivityLog records planning events for the dashboard history panel.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.Entry) error
}
