package line_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avasiliu/plantops/internal/domain/line"
	"github.com/stretchr/testify/require"
)

func testLines() []line.ProductionLine {
	return []line.ProductionLine{
		{ID: "L1", Name: "Linia 1 (BA 16)", CapacityPerHour: 120},
		{ID: "L2", Name: "Linia 2 (MASF)", CapacityPerHour: 90},
		{ID: "L3", Name: "Linia 3 (emulsii)", CapacityPerHour: 60},
	}
}

func TestCatalog_GetAndList(t *testing.T) {
	cat, err := line.NewCatalog(testLines())
	require.NoError(t, err)

	require.Len(t, cat.List(), 3)

	l, err := cat.Get("L2")
	require.NoError(t, err)
	require.Equal(t, 90.0, l.CapacityPerHour)

	_, err = cat.Get("L9")
	require.ErrorIs(t, err, line.ErrLineNotFound)
}

func TestCatalog_NextAfterWraps(t *testing.T) {
	cat, err := line.NewCatalog(testLines())
	require.NoError(t, err)

	next, err := cat.NextAfter("L1")
	require.NoError(t, err)
	require.Equal(t, "L2", next.ID)

	next, err = cat.NextAfter("L3")
	require.NoError(t, err)
	require.Equal(t, "L1", next.ID)
}

func TestCatalog_RejectsInvalidLines(t *testing.T) {
	_, err := line.NewCatalog(nil)
	require.ErrorIs(t, err, line.ErrEmptyCatalog)

	_, err = line.NewCatalog([]line.ProductionLine{{ID: "L1", CapacityPerHour: 0}})
	require.Error(t, err)

	_, err = line.NewCatalog([]line.ProductionLine{
		{ID: "L1", CapacityPerHour: 100},
		{ID: "L1", CapacityPerHour: 100},
	})
	require.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.yaml")
	doc := `lines:
  - id: L1
    name: Linia 1
    capacity_per_hour: 120
  - id: L2
    name: Linia 2
    capacity_per_hour: 90
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cat, err := line.LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cat.List(), 2)

	l, err := cat.Get("L1")
	require.NoError(t, err)
	require.Equal(t, "Linia 1", l.Name)
}

func TestGrid(t *testing.T) {
	g := line.NewGrid(6, 22)
	require.True(t, g.Contains(6))
	require.True(t, g.Contains(22))
	require.False(t, g.Contains(5))
	require.False(t, g.Contains(23))
	require.Len(t, g.Hours(), 17)
	require.Equal(t, 6, g.Hours()[0])
}
