package order

// Status represents the lifecycle state of a scheduled order.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPlanned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidateTransition validates a requested status transition. The graph is
// strictly forward: draft -> planned -> in_progress -> completed, with no
// way back and no skipping.
func ValidateTransition(from, to Status) error {
	valid := false
	switch from {
	case StatusDraft:
		valid = to == StatusPlanned
	case StatusPlanned:
		valid = to == StatusInProgress
	case StatusInProgress:
		valid = to == StatusCompleted
	case StatusCompleted:
		// terminal
	}
	if !valid {
		return ErrInvalidTransition
	}
	return nil
}

// Deletable reports whether an order in status s may be discarded.
// Completed orders are kept for the production record.
func Deletable(s Status) bool {
	return s != StatusCompleted
}
