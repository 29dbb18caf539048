package line

// ProductionLine represents one production line of the plant.
// Reference data: loaded at startup, never mutated during a session.
type ProductionLine struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	CapacityPerHour float64 `json:"capacity_per_hour" yaml:"capacity_per_hour"`
}

// Grid is the set of schedulable hours of one operating day,
// an inclusive contiguous range of hours-of-day.
type Grid struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// NewGrid builds a grid over [startHour, endHour].
func NewGrid(startHour, endHour int) Grid {
	return Grid{StartHour: startHour, EndHour: endHour}
}

// Contains reports whether h is a schedulable hour.
func (g Grid) Contains(h int) bool {
	return h >= g.StartHour && h <= g.EndHour
}

// Hours returns every schedulable hour in ascending order.
func (g Grid) Hours() []int {
	hours := make([]int, 0, g.EndHour-g.StartHour+1)
	for h := g.StartHour; h <= g.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
