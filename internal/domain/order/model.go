package order

import "time"

// Priority represents the commercial urgency of a work item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Item is one product line of an order: a recipe and the mass to produce.
type Item struct {
	Product   string  `json:"product"`
	RecipeRef string  `json:"recipe_ref"`
	Quantity  float64 `json:"quantity"`
}

// CandidateOrder is an unscheduled unit of production demand awaiting
// line/time assignment. Produced by order intake, consumed read-only by
// placement; the scheduled order keeps the candidate's id as SourceRef.
// Placement does not remove the candidate from the intake pool, so the
// same candidate may be scheduled more than once; that is a confirmed
// product decision, not an oversight.
type CandidateOrder struct {
	ID        string    `json:"id"`
	ClientRef string    `json:"client_ref"`
	Product   string    `json:"product"`
	RecipeRef string    `json:"recipe_ref"`
	Quantity  float64   `json:"quantity"`
	Priority  Priority  `json:"priority"`
	Deadline  time.Time `json:"deadline"`
}

// ScheduledOrder is a work item bound to a production line and an hour range.
type ScheduledOrder struct {
	ID            string    `json:"id"`
	SourceRef     string    `json:"source_ref,omitempty"`
	ClientRef     string    `json:"client_ref,omitempty"`
	Items         []Item    `json:"items"`
	LineID        string    `json:"line_id"`
	StartHour     int       `json:"start_hour"`
	DurationHours int       `json:"duration_hours"`
	Priority      Priority  `json:"priority,omitempty"`
	Deadline      time.Time `json:"deadline,omitzero"`
	Status        Status    `json:"status"`
	Reserved      bool      `json:"reserved"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedAt    time.Time `json:"modified_at"`
}

// Quantity returns the total mass of the order across all items.
func (o *ScheduledOrder) Quantity() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Quantity
	}
	return sum
}

// EndHour returns the last hour the order occupies (inclusive).
// It may fall past the grid's end; overflow is not clamped.
func (o *ScheduledOrder) EndHour() int {
	return o.StartHour + o.DurationHours - 1
}

// StockSnapshot is the oracle's view of one recipe at query time:
// raw material on hand versus the requirement committed so far.
type StockSnapshot struct {
	RecipeRef string  `json:"recipe_ref"`
	Available float64 `json:"available"`
	Required  float64 `json:"required"`
}

// StockWarning is advisory: placement proceeds regardless. Unknown is set
// when the oracle could not be reached, in which case the figures are zero
// and must not be read as "plenty of stock".
type StockWarning struct {
	RecipeRef string  `json:"recipe_ref"`
	Available float64 `json:"available"`
	Required  float64 `json:"required"`
	Unknown   bool    `json:"unknown,omitempty"`
}
