package mocks

import (
	"context"

	"github.com/avasiliu/plantops/internal/domain/activity"
	"github.com/avasiliu/plantops/internal/domain/order"
	"github.com/stretchr/testify/mock"
)

// OrderRepository is a mock for order.Repository.
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Create(ctx context.Context, o *order.ScheduledOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *OrderRepository) Get(ctx context.Context, id string) (*order.ScheduledOrder, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.ScheduledOrder); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) Update(ctx context.Context, o *order.ScheduledOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *OrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *OrderRepository) List(ctx context.Context, opts order.ListOptions) ([]order.ScheduledOrder, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]order.ScheduledOrder); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// StockOracle is a mock for order.StockOracle.
type StockOracle struct {
	mock.Mock
}

func (m *StockOracle) Query(ctx context.Context, recipeRef string) (order.StockSnapshot, error) {
	args := m.Called(ctx, recipeRef)
	return args.Get(0).(order.StockSnapshot), args.Error(1)
}

func (m *StockOracle) AddRequired(ctx context.Context, recipeRef string, qty float64) error {
	args := m.Called(ctx, recipeRef, qty)
	return args.Error(0)
}

// Dispatcher is a mock for order.Dispatcher.
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) NotifyDispatch(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
