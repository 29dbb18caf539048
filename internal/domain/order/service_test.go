package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avasiliu/plantops/internal/domain/line"
	"github.com/avasiliu/plantops/internal/domain/order"
	"github.com/avasiliu/plantops/internal/domain/plan"
	"github.com/avasiliu/plantops/internal/idgen"
	"github.com/avasiliu/plantops/internal/repository/mocks"
	"github.com/avasiliu/plantops/internal/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *order.Service
	stock    *sqlite.StockRepository
	oracle   *mocks.StockOracle
	dispatch *mocks.Dispatcher
}

// newFixture wires the service against an in-memory store. When mockOracle
// is false the sqlite stock repository serves as the oracle.
func newFixture(t *testing.T, mockOracle bool) *fixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	cat, err := line.NewCatalog([]line.ProductionLine{
		{ID: "L1", Name: "Linia 1", CapacityPerHour: 120},
		{ID: "L2", Name: "Linia 2", CapacityPerHour: 90},
	})
	require.NoError(t, err)

	f := &fixture{
		stock:    sqlite.NewStockRepository(db),
		oracle:   &mocks.StockOracle{},
		dispatch: &mocks.Dispatcher{},
	}

	var oracle order.StockOracle = f.stock
	if mockOracle {
		oracle = f.oracle
	}

	f.svc = order.NewService(
		sqlite.NewOrderRepository(db),
		oracle,
		f.dispatch,
		idgen.NewSequence("OP", 1),
		nil,
		cat,
		line.NewGrid(6, 22),
		nil,
	)
	require.NoError(t, f.svc.Refresh(context.Background()))
	return f
}

func candidate(qty float64) order.CandidateOrder {
	return order.CandidateOrder{
		ID:        "intake-1",
		ClientRef: "CMD-2031",
		Product:   "MASF 16",
		RecipeRef: "MASF16",
		Quantity:  qty,
		Priority:  order.PriorityMedium,
	}
}

func cellAt(t *testing.T, cells []plan.Cell, lineID string, hour int) plan.Cell {
	t.Helper()
	for _, c := range cells {
		if c.LineID == lineID && c.Hour == hour {
			return c
		}
	}
	t.Fatalf("no cell for (%s, %d)", lineID, hour)
	return plan.Cell{}
}

func TestService_CreateValidationListsFields(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Create(context.Background(), order.CreateRequest{
		Items:     []order.Item{{Product: "", RecipeRef: "BA16", Quantity: -5}},
		LineID:    "L9",
		StartHour: 3,
	})

	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "items[0].product")
	require.Contains(t, verr.Fields, "items[0].quantity")
	require.Contains(t, verr.Fields, "line_id")
	require.Contains(t, verr.Fields, "start_hour")
	require.ErrorIs(t, err, order.ErrInvalidInput)

	orders, err := f.svc.List(context.Background(), order.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestService_CreateWizardOrderIsPlannedAndDispatched(t *testing.T) {
	f := newFixture(t, false)
	f.dispatch.On("NotifyDispatch", mock.Anything, "OP-0001").Return(nil)

	o, err := f.svc.Create(context.Background(), order.CreateRequest{
		ClientRef: "CMD-2031",
		Items:     []order.Item{{Product: "BA 16", RecipeRef: "BA16", Quantity: 200}},
		LineID:    "L1",
		StartHour: 7,
	})
	require.NoError(t, err)
	require.Equal(t, "OP-0001", o.ID)
	require.Equal(t, order.StatusPlanned, o.Status)
	// duration defaulted from the 80 t/h estimate
	require.Equal(t, 3, o.DurationHours)

	f.dispatch.AssertExpectations(t)

	cells := f.svc.Utilization()
	want := (200.0 / 3.0) / 120.0 * 100.0
	for _, h := range []int{7, 8, 9} {
		require.InDelta(t, want, cellAt(t, cells, "L1", h).UtilizationPercent, 1e-9)
	}
}

func TestService_PlaceRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t, false)

	for _, qty := range []float64{0, -10} {
		_, _, err := f.svc.Place(context.Background(), candidate(qty), "L1", 7)
		var verr *order.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "quantity")
	}

	// repeated rejections leave the order set untouched
	orders, err := f.svc.List(context.Background(), order.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestService_PlaceRejectsOutOfGridTargets(t *testing.T) {
	f := newFixture(t, false)

	_, _, err := f.svc.Place(context.Background(), candidate(100), "L9", 7)
	require.ErrorIs(t, err, order.ErrInvalidInput)

	_, _, err = f.svc.Place(context.Background(), candidate(100), "L1", 23)
	require.ErrorIs(t, err, order.ErrInvalidInput)
}

func TestService_PlaceStockShortfallWarnsButPlaces(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.stock.SetAvailable(ctx, "MASF16", 200))
	require.NoError(t, f.stock.AddRequired(ctx, "MASF16", 550))

	o, warning, err := f.svc.Place(ctx, candidate(150), "L2", 10)
	require.NoError(t, err)
	require.NotNil(t, warning)
	require.Equal(t, "MASF16", warning.RecipeRef)
	require.Equal(t, 200.0, warning.Available)
	require.Equal(t, 700.0, warning.Required)
	require.False(t, warning.Unknown)

	require.Equal(t, order.StatusDraft, o.Status)
	require.Equal(t, "L2", o.LineID)
	require.Equal(t, 10, o.StartHour)
	require.Equal(t, 2, o.DurationHours) // ceil(150/80)
}

func TestService_PlaceSufficientStockNoWarning(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.stock.SetAvailable(ctx, "MASF16", 1000))

	o, warning, err := f.svc.Place(ctx, candidate(150), "L1", 8)
	require.NoError(t, err)
	require.Nil(t, warning)
	require.Equal(t, order.StatusDraft, o.Status)
}

func TestService_PlaceOracleDownDegradesToUnknown(t *testing.T) {
	f := newFixture(t, true)
	f.oracle.On("Query", mock.Anything, "MASF16").
		Return(order.StockSnapshot{}, errors.New("oracle unreachable"))

	o, warning, err := f.svc.Place(context.Background(), candidate(150), "L1", 8)
	require.NoError(t, err)
	require.NotNil(t, warning)
	require.True(t, warning.Unknown)
	require.NotNil(t, o)
}

func TestService_PlaceOverflowPastGridEndStillPlaces(t *testing.T) {
	f := newFixture(t, false)

	// 200 t at 21:00 runs to 23:00, one hour past the grid. Accepted by
	// design; the overflow hour simply has no cell.
	o, _, err := f.svc.Place(context.Background(), candidate(200), "L1", 21)
	require.NoError(t, err)
	require.Equal(t, 3, o.DurationHours)
	require.Equal(t, 23, o.EndHour())

	cells := f.svc.Utilization()
	for _, c := range cells {
		require.LessOrEqual(t, c.Hour, 22)
	}
	require.Greater(t, cellAt(t, cells, "L1", 22).UtilizationPercent, 0.0)
}

func TestService_PlaceThenDeleteRestoresUtilization(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)
	before := f.svc.Utilization()

	o, _, err := f.svc.Place(ctx, candidate(300), "L2", 12)
	require.NoError(t, err)
	require.NotEqual(t, before, f.svc.Utilization())

	require.NoError(t, f.svc.Delete(ctx, o.ID))
	require.Equal(t, before, f.svc.Utilization())
}

func TestService_TransitionLifecycle(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.dispatch.On("NotifyDispatch", mock.Anything, mock.Anything).Return(nil)

	o, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)
	require.Equal(t, order.StatusDraft, o.Status)

	// skipping ahead is rejected and the status stays put
	_, err = f.svc.Transition(ctx, o.ID, order.StatusCompleted)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusDraft, got.Status)

	for _, next := range []order.Status{order.StatusPlanned, order.StatusInProgress, order.StatusCompleted} {
		got, err = f.svc.Transition(ctx, o.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, got.Status)
	}

	// completed is terminal
	_, err = f.svc.Transition(ctx, o.ID, order.StatusInProgress)
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	f.dispatch.AssertNumberOfCalls(t, "NotifyDispatch", 1)
}

func TestService_TransitionDispatchFailureKeepsStatus(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.dispatch.On("NotifyDispatch", mock.Anything, mock.Anything).
		Return(errors.New("dispatch down"))

	o, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)

	got, err := f.svc.Transition(ctx, o.ID, order.StatusPlanned)
	require.NoError(t, err)
	require.Equal(t, order.StatusPlanned, got.Status)
}

func TestService_TransitionNotFound(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Transition(context.Background(), "OP-9999", order.StatusPlanned)
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestService_ReserveMaterialsIsIdempotent(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	o, _, err := f.svc.Place(ctx, candidate(150), "L1", 7)
	require.NoError(t, err)

	reserved, err := f.svc.ReserveMaterials(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, reserved.Reserved)

	snap, err := f.stock.Query(ctx, "MASF16")
	require.NoError(t, err)
	require.Equal(t, 150.0, snap.Required)

	// second reservation must not double-count
	_, err = f.svc.ReserveMaterials(ctx, o.ID)
	require.NoError(t, err)
	snap, err = f.stock.Query(ctx, "MASF16")
	require.NoError(t, err)
	require.Equal(t, 150.0, snap.Required)
}

func TestService_ChangeLineCyclesAndKeepsStatus(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.dispatch.On("NotifyDispatch", mock.Anything, mock.Anything).Return(nil)

	o, _, err := f.svc.Place(ctx, candidate(120), "L2", 9)
	require.NoError(t, err)
	for _, next := range []order.Status{order.StatusPlanned, order.StatusInProgress, order.StatusCompleted} {
		_, err = f.svc.Transition(ctx, o.ID, next)
		require.NoError(t, err)
	}

	// change line is allowed even on a completed order
	moved, err := f.svc.ChangeLine(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "L1", moved.LineID)
	require.Equal(t, order.StatusCompleted, moved.Status)
	require.Equal(t, 9, moved.StartHour)

	cells := f.svc.Utilization()
	require.Greater(t, cellAt(t, cells, "L1", 9).UtilizationPercent, 0.0)
	require.Equal(t, 0.0, cellAt(t, cells, "L2", 9).UtilizationPercent)
}

func TestService_DeleteCompletedRejected(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.dispatch.On("NotifyDispatch", mock.Anything, mock.Anything).Return(nil)

	o, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)
	for _, next := range []order.Status{order.StatusPlanned, order.StatusInProgress, order.StatusCompleted} {
		_, err = f.svc.Transition(ctx, o.ID, next)
		require.NoError(t, err)
	}

	require.ErrorIs(t, f.svc.Delete(ctx, o.ID), order.ErrOrderCompleted)

	_, err = f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
}

func TestService_DeleteNotFound(t *testing.T) {
	f := newFixture(t, false)
	require.ErrorIs(t, f.svc.Delete(context.Background(), "OP-9999"), order.ErrOrderNotFound)
}

func TestService_UpdatePatchesFields(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	o, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)

	newItems := []order.Item{
		{Product: "BA 8", RecipeRef: "BA8", Quantity: 60},
		{Product: "BA 16", RecipeRef: "BA16", Quantity: 90},
	}
	startHour := 10
	updated, err := f.svc.Update(ctx, order.UpdateRequest{
		ID:        o.ID,
		Items:     newItems,
		StartHour: &startHour,
	})
	require.NoError(t, err)
	require.Equal(t, o.ID, updated.ID)
	require.Equal(t, 10, updated.StartHour)
	require.Equal(t, 150.0, updated.Quantity())
	require.Equal(t, order.StatusDraft, updated.Status)
}

func TestService_UpdateStatusMustFollowGraph(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	o, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)

	completed := order.StatusCompleted
	_, err = f.svc.Update(ctx, order.UpdateRequest{ID: o.ID, Status: &completed})
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	f.dispatch.On("NotifyDispatch", mock.Anything, o.ID).Return(nil)
	planned := order.StatusPlanned
	updated, err := f.svc.Update(ctx, order.UpdateRequest{ID: o.ID, Status: &planned})
	require.NoError(t, err)
	require.Equal(t, order.StatusPlanned, updated.Status)
	f.dispatch.AssertExpectations(t)
}

func TestService_UpdateValidatesPatchedOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	o, _, err := f.svc.Place(ctx, candidate(100), "L1", 7)
	require.NoError(t, err)

	badHour := 2
	_, err = f.svc.Update(ctx, order.UpdateRequest{ID: o.ID, StartHour: &badHour})
	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "start_hour")

	_, err = f.svc.Update(ctx, order.UpdateRequest{ID: o.ID, Items: []order.Item{}})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "items")
}

func TestService_UpdateNotFound(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Update(context.Background(), order.UpdateRequest{ID: "OP-9999"})
	require.ErrorIs(t, err, order.ErrOrderNotFound)
}
