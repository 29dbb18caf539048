package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avasiliu/plantops/internal/domain/order"
	"github.com/avasiliu/plantops/internal/repository"
)

// OrderRepository implements order.Repository for SQLite
type OrderRepository struct {
	db *DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new scheduled order with its items
func (r *OrderRepository) Create(ctx context.Context, o *order.ScheduledOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			id, source_ref, client_ref, line_id, start_hour, duration_hours,
			priority, deadline, status, reserved, created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		o.ID,
		nullString(o.SourceRef),
		o.ClientRef,
		o.LineID,
		o.StartHour,
		o.DurationHours,
		o.Priority,
		nullTime(o.Deadline),
		o.Status,
		o.Reserved,
		o.CreatedAt,
		o.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves a scheduled order by id, items included
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.ScheduledOrder, error) {
	query := `
		SELECT
			id, source_ref, client_ref, line_id, start_hour, duration_hours,
			priority, deadline, status, reserved, created_at, modified_at
		FROM orders
		WHERE id = ?
	`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return o, nil
}

// Update rewrites an order and its item list
func (r *OrderRepository) Update(ctx context.Context, o *order.ScheduledOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE orders
		SET client_ref = ?, line_id = ?, start_hour = ?, duration_hours = ?,
		    priority = ?, deadline = ?, status = ?, reserved = ?, modified_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query,
		o.ClientRef,
		o.LineID,
		o.StartHour,
		o.DurationHours,
		o.Priority,
		nullTime(o.Deadline),
		o.Status,
		o.Reserved,
		o.ModifiedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, o.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes an order; items cascade
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns orders matching the given options, items included
func (r *OrderRepository) List(ctx context.Context, opts order.ListOptions) ([]order.ScheduledOrder, error) {
	query := `
		SELECT
			id, source_ref, client_ref, line_id, start_hour, duration_hours,
			priority, deadline, status, reserved, created_at, modified_at
		FROM orders
	`

	args := []interface{}{}
	conditions := []string{}

	if opts.LineID != "" {
		conditions = append(conditions, "line_id = ?")
		args = append(args, opts.LineID)
	}
	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, st := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []order.ScheduledOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product, recipe_ref, quantity FROM order_items WHERE order_id = ? ORDER BY position`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.Product, &it.RecipeRef, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []order.Item) error {
	for i, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, position, product, recipe_ref, quantity) VALUES (?, ?, ?, ?, ?)`,
			orderID, i, it.Product, it.RecipeRef, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*order.ScheduledOrder, error) {
	var o order.ScheduledOrder
	var sourceRef sql.NullString
	var clientRef sql.NullString
	var priority sql.NullString
	var deadline sql.NullTime

	err := row.Scan(
		&o.ID,
		&sourceRef,
		&clientRef,
		&o.LineID,
		&o.StartHour,
		&o.DurationHours,
		&priority,
		&deadline,
		&o.Status,
		&o.Reserved,
		&o.CreatedAt,
		&o.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	o.SourceRef = sourceRef.String
	o.ClientRef = clientRef.String
	o.Priority = order.Priority(priority.String)
	if deadline.Valid {
		o.Deadline = deadline.Time
	}
	return &o, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
