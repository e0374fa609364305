package taxi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWallBetweenIsSymmetric(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Walls = []Wall{{A: Cell{X: 1, Y: 1}, B: Cell{X: 1, Y: 2}}}

	require.True(t, grid.WallBetween(Cell{X: 1, Y: 1}, Cell{X: 1, Y: 2}))
	require.True(t, grid.WallBetween(Cell{X: 1, Y: 2}, Cell{X: 1, Y: 1}))
	require.False(t, grid.WallBetween(Cell{X: 1, Y: 1}, Cell{X: 2, Y: 1}))
}

func TestTrafficAt(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Traffic = []TrafficCell{{Cell: Cell{X: 2, Y: 2}, Prob: 0.4}}

	prob, at := grid.TrafficAt(Cell{X: 2, Y: 2})
	require.True(t, at)
	require.Equal(t, 0.4, prob)

	_, at = grid.TrafficAt(Cell{X: 1, Y: 1})
	require.False(t, at)
}

func TestFuelStationAt(t *testing.T) {
	grid := openGrid(3, 3)
	grid.FuelStations = []FuelStation{{Cell: Cell{X: 3, Y: 1}, Capacity: 12}}

	capacity, at := grid.FuelStationAt(Cell{X: 3, Y: 1})
	require.True(t, at)
	require.Equal(t, 12.0, capacity)

	_, at = grid.FuelStationAt(Cell{X: 1, Y: 3})
	require.False(t, at)
}

func TestInBounds(t *testing.T) {
	grid := openGrid(4, 2)

	require.True(t, grid.InBounds(Cell{X: 1, Y: 1}))
	require.True(t, grid.InBounds(Cell{X: 4, Y: 2}))
	require.False(t, grid.InBounds(Cell{X: 0, Y: 1}))
	require.False(t, grid.InBounds(Cell{X: 5, Y: 1}))
	require.False(t, grid.InBounds(Cell{X: 1, Y: 3}))
}

func TestMovedOffOf(t *testing.T) {
	cells := []Cell{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 2}}

	at := func(c Cell) State {
		return State{Agent: Agent{Cell: c}}
	}

	t.Run("first match wins", func(t *testing.T) {
		// Duplicate members resolve to the lowest index
		i, moved := movedOffOf(cells, at(Cell{X: 2, Y: 2}),
			at(Cell{X: 2, Y: 3}))
		require.True(t, moved)
		require.Equal(t, 1, i)
	})

	t.Run("still on the cell", func(t *testing.T) {
		_, moved := movedOffOf(cells, at(Cell{X: 1, Y: 1}),
			at(Cell{X: 1, Y: 1}))
		require.False(t, moved)
	})

	t.Run("never on a member", func(t *testing.T) {
		_, moved := movedOffOf(cells, at(Cell{X: 3, Y: 3}),
			at(Cell{X: 3, Y: 2}))
		require.False(t, moved)
	})
}
