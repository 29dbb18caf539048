package activity

import "time"

// Type represents the kind of planning event
type Type string

const (
	TypeOrderCreated       Type = "order_created"
	TypeOrderPlaced        Type = "order_placed"
	TypeOrderUpdated       Type = "order_updated"
	TypeOrderDeleted       Type = "order_deleted"
	TypeStatusTransition   Type = "status_transition"
	TypeLineChanged        Type = "line_changed"
	TypeMaterialsReserved  Type = "materials_reserved"
)

// Entry represents an event in the planning history log
type Entry struct {
	ID        int64     `json:"id"`
	OrderID   *string   `json:"order_id,omitempty"`
	Type      Type      `json:"type"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
