package plan

import "math"

// DefaultThroughputPerHour is the coarse mass-per-hour assumption behind
// the drag-placement duration estimate. Deliberately independent of the
// target line's own capacity: the estimate answers "how long would this
// roughly take", not "does it fit on this line".
const DefaultThroughputPerHour = 80.0

// EstimateDuration converts an order's mass into a whole number of hours
// at DefaultThroughputPerHour, never less than one.
func EstimateDuration(quantity float64) int {
	if quantity <= 0 {
		return 1
	}
	h := int(math.Ceil(quantity / DefaultThroughputPerHour))
	if h < 1 {
		return 1
	}
	return h
}
