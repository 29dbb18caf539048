// Package plan holds the pure scheduling arithmetic: per-cell capacity
// utilization and the duration estimate used by drag placement. Everything
// here is a total function of its inputs; the guarded order collection
// lives in the order package.
package plan

import "github.com/avasiliu/plantops/internal/domain/line"

// Severity classifies a cell's utilization for the occupancy view.
type Severity string

const (
	SeverityEmpty  Severity = "empty"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Classify maps a utilization percentage to its severity band.
// Bands: 0 empty, (0,50) low, [50,80) medium, [80,inf) high.
func Classify(pct float64) Severity {
	switch {
	case pct <= 0:
		return SeverityEmpty
	case pct < 50:
		return SeverityLow
	case pct < 80:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Demand is the slice of the order set the engine needs: where the mass
// sits on the grid. The caller maps scheduled orders to demands.
type Demand struct {
	LineID        string
	StartHour     int
	DurationHours int
	Quantity      float64
}

// Cell is the utilization attributed to one production line during one hour.
// Derived data: always recomputed, never stored.
type Cell struct {
	LineID             string   `json:"line_id"`
	Hour               int      `json:"hour"`
	UtilizationPercent float64  `json:"utilization_percent"`
	Severity           Severity `json:"severity"`
}

// Compute produces a cell for every (line, hour) pair of the grid from
// scratch. An order's mass is spread uniformly over its duration; overlapping
// orders add up and are never clamped, the severity band is the only signal
// of overcommitment. Demands referencing a line outside lines are ignored.
func Compute(demands []Demand, lines []line.ProductionLine, grid line.Grid) []Cell {
	capByLine := make(map[string]float64, len(lines))
	for _, l := range lines {
		capByLine[l.ID] = l.CapacityPerHour
	}

	type key struct {
		lineID string
		hour   int
	}
	load := make(map[key]float64)
	for _, d := range demands {
		cap, ok := capByLine[d.LineID]
		if !ok || d.DurationHours <= 0 {
			continue
		}
		perHour := d.Quantity / float64(d.DurationHours)
		for h := d.StartHour; h < d.StartHour+d.DurationHours; h++ {
			if !grid.Contains(h) {
				continue
			}
			load[key{d.LineID, h}] += perHour / cap * 100
		}
	}

	cells := make([]Cell, 0, len(lines)*(grid.EndHour-grid.StartHour+1))
	for _, l := range lines {
		for _, h := range grid.Hours() {
			pct := load[key{l.ID, h}]
			cells = append(cells, Cell{
				LineID:             l.ID,
				Hour:               h,
				UtilizationPercent: pct,
				Severity:           Classify(pct),
			})
		}
	}
	return cells
}
