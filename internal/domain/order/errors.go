package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOrderNotFound indicates the scheduled order doesn't exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition indicates a status transition outside the lifecycle graph.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrOrderCompleted indicates an action not permitted on a completed order.
	ErrOrderCompleted = errors.New("order is completed")
	// ErrInvalidInput indicates invalid input for order operations.
	ErrInvalidInput = errors.New("invalid order input")
)

// ValidationError reports the specific fields that failed validation,
// so the dialog can mark them instead of showing a generic failure.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Is lets callers match a ValidationError against ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
