package line

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrLineNotFound indicates the production line doesn't exist.
	ErrLineNotFound = errors.New("production line not found")
	// ErrEmptyCatalog indicates the catalog holds no lines.
	ErrEmptyCatalog = errors.New("line catalog is empty")
)

// Catalog holds the plant's production lines in display order.
// Immutable after construction.
type Catalog struct {
	lines []ProductionLine
	byID  map[string]ProductionLine
}

// NewCatalog builds a catalog from a fixed line set.
func NewCatalog(lines []ProductionLine) (*Catalog, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCatalog
	}
	byID := make(map[string]ProductionLine, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.CapacityPerHour <= 0 {
			return nil, fmt.Errorf("invalid line %q: capacity=%v", l.ID, l.CapacityPerHour)
		}
		if _, dup := byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate line id %q", l.ID)
		}
		byID[l.ID] = l
	}
	return &Catalog{lines: append([]ProductionLine(nil), lines...), byID: byID}, nil
}

// LoadCatalog reads the line catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read line catalog: %w", err)
	}
	var doc struct {
		Lines []ProductionLine `yaml:"lines"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse line catalog: %w", err)
	}
	return NewCatalog(doc.Lines)
}

// List returns all lines in display order.
func (c *Catalog) List() []ProductionLine {
	return append([]ProductionLine(nil), c.lines...)
}

// Get returns the line with the given id.
func (c *Catalog) Get(id string) (ProductionLine, error) {
	l, ok := c.byID[id]
	if !ok {
		return ProductionLine{}, ErrLineNotFound
	}
	return l, nil
}

// NextAfter returns the line following id in catalog order, wrapping
// around at the end. Used by the change-line action.
func (c *Catalog) NextAfter(id string) (ProductionLine, error) {
	for i, l := range c.lines {
		if l.ID == id {
			return c.lines[(i+1)%len(c.lines)], nil
		}
	}
	return ProductionLine{}, ErrLineNotFound
}
