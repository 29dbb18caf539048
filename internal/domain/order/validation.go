package order

import (
	"fmt"
	"strings"

	"github.com/avasiliu/plantops/internal/domain/line"
)

// ValidateCreateInput validates a wizard submission. Every offending field
// is collected so the caller can report all of them at once.
func ValidateCreateInput(req CreateRequest, grid line.Grid, lineExists func(string) bool) error {
	var fields []string

	if len(req.Items) == 0 {
		fields = append(fields, "items")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.Product) == "" {
			fields = append(fields, fmt.Sprintf("items[%d].product", i))
		}
		if strings.TrimSpace(it.RecipeRef) == "" {
			fields = append(fields, fmt.Sprintf("items[%d].recipe_ref", i))
		}
		if it.Quantity < 0 {
			fields = append(fields, fmt.Sprintf("items[%d].quantity", i))
		}
	}

	if strings.TrimSpace(req.LineID) == "" || !lineExists(req.LineID) {
		fields = append(fields, "line_id")
	}
	if !grid.Contains(req.StartHour) {
		fields = append(fields, "start_hour")
	}
	if req.DurationHours < 0 {
		fields = append(fields, "duration_hours")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateCandidate validates a drag-placement request. A non-positive
// quantity is rejected before any duration estimate, never coerced.
func ValidateCandidate(c CandidateOrder, targetLine string, targetHour int, grid line.Grid, lineExists func(string) bool) error {
	var fields []string

	if c.Quantity <= 0 {
		fields = append(fields, "quantity")
	}
	if strings.TrimSpace(c.RecipeRef) == "" {
		fields = append(fields, "recipe_ref")
	}
	if !lineExists(targetLine) {
		fields = append(fields, "line_id")
	}
	if !grid.Contains(targetHour) {
		fields = append(fields, "start_hour")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
