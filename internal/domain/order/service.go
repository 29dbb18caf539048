package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avasiliu/plantops/internal/domain/activity"
	"github.com/avasiliu/plantops/internal/domain/line"
	"github.com/avasiliu/plantops/internal/domain/plan"
	"github.com/avasiliu/plantops/internal/repository"
	"github.com/google/uuid"
)

// Service owns the scheduled-order collection. Every mutating entry point
// (create, update, delete, place, transition, reserve, change-line) runs
// under one lock, and the utilization grid is recomputed from scratch
// inside the same critical section so readers never see stale cells.
type Service struct {
	repo       Repository
	oracle     StockOracle
	dispatch   Dispatcher
	ids        IDGenerator
	activities ActivityLog
	catalog    *line.Catalog
	grid       line.Grid
	logger     *slog.Logger

	mu    sync.RWMutex
	cells []plan.Cell
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	oracle StockOracle,
	dispatch Dispatcher,
	ids IDGenerator,
	activities ActivityLog,
	catalog *line.Catalog,
	grid line.Grid,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		oracle:     oracle,
		dispatch:   dispatch,
		ids:        ids,
		activities: activities,
		catalog:    catalog,
		grid:       grid,
		logger:     logger,
	}
}

// CreateRequest describes a wizard submission.
type CreateRequest struct {
	ClientRef     string
	Items         []Item
	LineID        string
	StartHour     int
	DurationHours int
	Priority      Priority
	Deadline      time.Time
}

// UpdateRequest describes an order patch. Nil fields are left unchanged.
// Status changes must follow the lifecycle graph; the id is immutable.
type UpdateRequest struct {
	ID            string
	ClientRef     *string
	Items         []Item
	LineID        *string
	StartHour     *int
	DurationHours *int
	Priority      *Priority
	Deadline      *time.Time
	Status        *Status
}

// Grid returns the schedulable day.
func (s *Service) Grid() line.Grid {
	return s.grid
}

// Lines returns the production lines in display order.
func (s *Service) Lines() []line.ProductionLine {
	return s.catalog.List()
}

// Refresh recomputes the utilization grid from the stored order set.
// Call once at startup; mutations refresh on their own.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Utilization returns the current utilization cells for every (line, hour)
// pair of the grid.
func (s *Service) Utilization() []plan.Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]plan.Cell(nil), s.cells...)
}

// Create creates a scheduled order from a wizard submission. Wizard orders
// enter the lifecycle already planned and are handed to dispatch.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ScheduledOrder, error) {
	if err := ValidateCreateInput(req, s.grid, s.lineExists); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	o := &ScheduledOrder{
		ID:            s.ids.Next(),
		ClientRef:     req.ClientRef,
		Items:         append([]Item(nil), req.Items...),
		LineID:        req.LineID,
		StartHour:     req.StartHour,
		DurationHours: req.DurationHours,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
		Status:        StatusPlanned,
		CreatedAt:     now,
		ModifiedAt:    now,
	}
	if o.DurationHours < 1 {
		o.DurationHours = plan.EstimateDuration(o.Quantity())
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}

	s.notifyDispatch(ctx, o.ID)
	s.logActivity(ctx, activity.TypeOrderCreated, o.ID, fmt.Sprintf("order %s created on %s at %02d:00", o.ID, o.LineID, o.StartHour))

	return o, nil
}

// Place schedules a candidate onto (targetLine, targetHour). The duration
// is a coarse estimate from the candidate's mass; a range running past the
// grid's last hour is accepted as-is (confirmed product decision, the
// overflow is simply not rendered). The returned warning, when non-nil, is
// advisory: the order has already been created, in status draft, and the
// caller decides whether to keep or roll it back.
func (s *Service) Place(ctx context.Context, candidate CandidateOrder, targetLine string, targetHour int) (*ScheduledOrder, *StockWarning, error) {
	if err := ValidateCandidate(candidate, targetLine, targetHour, s.grid, s.lineExists); err != nil {
		return nil, nil, err
	}

	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	warning := s.checkStock(ctx, candidate.RecipeRef, candidate.Quantity)

	now := time.Now()
	o := &ScheduledOrder{
		ID:        s.ids.Next(),
		SourceRef: candidate.ID,
		ClientRef: candidate.ClientRef,
		Items: []Item{{
			Product:   candidate.Product,
			RecipeRef: candidate.RecipeRef,
			Quantity:  candidate.Quantity,
		}},
		LineID:        targetLine,
		StartHour:     targetHour,
		DurationHours: plan.EstimateDuration(candidate.Quantity),
		Priority:      candidate.Priority,
		Deadline:      candidate.Deadline,
		Status:        StatusDraft,
		CreatedAt:     now,
		ModifiedAt:    now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, nil, fmt.Errorf("placing order: %w", err)
	}
	if err := s.refreshLocked(ctx); err != nil {
		return nil, nil, err
	}

	s.logActivity(ctx, activity.TypeOrderPlaced, o.ID, fmt.Sprintf("order %s placed on %s at %02d:00 for %dh", o.ID, o.LineID, o.StartHour, o.DurationHours))

	return o, warning, nil
}

// Get returns a scheduled order by id.
func (s *Service) Get(ctx context.Context, id string) (*ScheduledOrder, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order: %w", err)
	}
	return o, nil
}

// List returns scheduled orders filtered by opts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]ScheduledOrder, error) {
	return s.repo.List(ctx, opts)
}

// Update patches an order. A status change is only applied through the
// lifecycle graph; everything else merges field by field.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*ScheduledOrder, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}

	updated := *current
	if req.ClientRef != nil {
		updated.ClientRef = *req.ClientRef
	}
	if req.Items != nil {
		updated.Items = append([]Item(nil), req.Items...)
	}
	if req.LineID != nil {
		updated.LineID = *req.LineID
	}
	if req.StartHour != nil {
		updated.StartHour = *req.StartHour
	}
	if req.DurationHours != nil {
		updated.DurationHours = *req.DurationHours
	}
	if req.Priority != nil {
		updated.Priority = *req.Priority
	}
	if req.Deadline != nil {
		updated.Deadline = *req.Deadline
	}

	if err := s.validatePatched(&updated); err != nil {
		return nil, err
	}

	enteredPlanned := false
	if req.Status != nil && *req.Status != current.Status {
		if err := ValidateTransition(current.Status, *req.Status); err != nil {
			return nil, err
		}
		updated.Status = *req.Status
		enteredPlanned = updated.Status == StatusPlanned
	}
	updated.ModifiedAt = time.Now()

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("updating order: %w", err)
	}
	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}

	if enteredPlanned {
		s.notifyDispatch(ctx, updated.ID)
	}
	s.logActivity(ctx, activity.TypeOrderUpdated, updated.ID, fmt.Sprintf("order %s updated", updated.ID))

	return &updated, nil
}

// Delete discards an order entirely. Completed orders are kept for the
// production record and cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("loading order: %w", err)
	}
	if !Deletable(current.Status) {
		return ErrOrderCompleted
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("deleting order: %w", err)
	}
	if err := s.refreshLocked(ctx); err != nil {
		return err
	}

	s.logActivity(ctx, activity.TypeOrderDeleted, id, fmt.Sprintf("order %s deleted", id))
	return nil
}

// Transition moves an order along the lifecycle graph. Entering planned
// hands the order to dispatch; dispatch failure never rolls the write back.
func (s *Service) Transition(ctx context.Context, id string, to Status) (*ScheduledOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}

	if err := ValidateTransition(current.Status, to); err != nil {
		return nil, err
	}

	updated := *current
	updated.Status = to
	updated.ModifiedAt = time.Now()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("transitioning order: %w", err)
	}

	if to == StatusPlanned {
		s.notifyDispatch(ctx, updated.ID)
	}
	s.logActivity(ctx, activity.TypeStatusTransition, updated.ID, fmt.Sprintf("order %s: %s -> %s", updated.ID, current.Status, to))

	return &updated, nil
}

// ReserveMaterials commits the order's quantities against the stock
// oracle's required accounting. Idempotent: an already-reserved order is
// returned unchanged with no second commit.
func (s *Service) ReserveMaterials(ctx context.Context, id string) (*ScheduledOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}
	if current.Reserved {
		return current, nil
	}

	for recipe, qty := range quantitiesByRecipe(current.Items) {
		if err := s.oracle.AddRequired(ctx, recipe, qty); err != nil {
			return nil, fmt.Errorf("reserving %s: %w", recipe, err)
		}
	}

	updated := *current
	updated.Reserved = true
	updated.ModifiedAt = time.Now()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("marking order reserved: %w", err)
	}

	s.logActivity(ctx, activity.TypeMaterialsReserved, updated.ID, fmt.Sprintf("materials reserved for order %s", updated.ID))
	return &updated, nil
}

// ChangeLine reassigns the order to the next production line in catalog
// order, keeping start hour, duration and status. Permitted in any state.
func (s *Service) ChangeLine(ctx context.Context, id string) (*ScheduledOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}

	next, err := s.catalog.NextAfter(current.LineID)
	if err != nil {
		return nil, fmt.Errorf("resolving next line: %w", err)
	}

	updated := *current
	updated.LineID = next.ID
	updated.ModifiedAt = time.Now()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("changing line: %w", err)
	}
	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}

	s.logActivity(ctx, activity.TypeLineChanged, updated.ID, fmt.Sprintf("order %s moved to %s", updated.ID, next.ID))
	return &updated, nil
}

// QueryStock exposes the oracle snapshot for a recipe.
func (s *Service) QueryStock(ctx context.Context, recipeRef string) (StockSnapshot, error) {
	return s.oracle.Query(ctx, recipeRef)
}

func (s *Service) refreshLocked(ctx context.Context) error {
	orders, err := s.repo.List(ctx, ListOptions{})
	if err != nil {
		return fmt.Errorf("refreshing utilization: %w", err)
	}
	demands := make([]plan.Demand, 0, len(orders))
	for _, o := range orders {
		demands = append(demands, plan.Demand{
			LineID:        o.LineID,
			StartHour:     o.StartHour,
			DurationHours: o.DurationHours,
			Quantity:      o.Quantity(),
		})
	}
	s.cells = plan.Compute(demands, s.catalog.List(), s.grid)
	return nil
}

// checkStock evaluates the pending placement against the oracle. An
// unreachable oracle degrades to an Unknown warning, never a failure.
func (s *Service) checkStock(ctx context.Context, recipeRef string, quantity float64) *StockWarning {
	snap, err := s.oracle.Query(ctx, recipeRef)
	if err != nil {
		s.logger.Warn("stock oracle unavailable", "recipe", recipeRef, "error", err)
		return &StockWarning{RecipeRef: recipeRef, Unknown: true}
	}
	requiredAfter := snap.Required + quantity
	if snap.Available < requiredAfter {
		return &StockWarning{
			RecipeRef: recipeRef,
			Available: snap.Available,
			Required:  requiredAfter,
		}
	}
	return nil
}

func (s *Service) validatePatched(o *ScheduledOrder) error {
	var fields []string
	if len(o.Items) == 0 {
		fields = append(fields, "items")
	}
	for i, it := range o.Items {
		if it.Quantity < 0 {
			fields = append(fields, fmt.Sprintf("items[%d].quantity", i))
		}
	}
	if !s.lineExists(o.LineID) {
		fields = append(fields, "line_id")
	}
	if !s.grid.Contains(o.StartHour) {
		fields = append(fields, "start_hour")
	}
	if o.DurationHours < 1 {
		fields = append(fields, "duration_hours")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) lineExists(id string) bool {
	_, err := s.catalog.Get(id)
	return err == nil
}

func (s *Service) notifyDispatch(ctx context.Context, orderID string) {
	if s.dispatch == nil {
		return
	}
	if err := s.dispatch.NotifyDispatch(ctx, orderID); err != nil {
		s.logger.Warn("dispatch notification failed", "order", orderID, "error", err)
	}
}

func (s *Service) logActivity(ctx context.Context, typ activity.Type, orderID, summary string) {
	if s.activities == nil {
		return
	}
	id := orderID
	_ = s.activities.Log(ctx, &activity.Entry{
		OrderID: &id,
		Type:    typ,
		Summary: summary,
	})
}

func quantitiesByRecipe(items []Item) map[string]float64 {
	byRecipe := make(map[string]float64, len(items))
	for _, it := range items {
		byRecipe[it.RecipeRef] += it.Quantity
	}
	return byRecipe
}
