package taxi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeasureEnvComplexity(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Tolls = []Cell{{X: 1, Y: 2}, {X: 2, Y: 1}}

	taxi := newTestTaxi(t, grid,
		Agent{Cell: Cell{X: 3, Y: 3}},
		[]Passenger{{Cell: Cell{X: 1, Y: 1}, Dest: Cell{X: 3, Y: 1}}},
		[]HotswapStation{{Cell: Cell{X: 3, Y: 3}}})

	require.Equal(t, 3, taxi.MeasureEnvComplexity(nil))

	// Complexity tracks the remaining stations of a given state
	state := taxi.CurrentState()
	next, err := taxi.Transition(state, Down)
	require.NoError(t, err)
	require.Equal(t, 2, taxi.MeasureEnvComplexity(&next))
	require.Equal(t, 3, taxi.MeasureEnvComplexity(nil),
		"initial complexity should not change over an episode")
}

func TestMeasureVisualDissimilarity(t *testing.T) {
	build := func(stations []HotswapStation, code []int) *Taxi {
		task := NewDeliver(100)
		taxi, _, err := New(task, openGrid(3, 3),
			Agent{Cell: Cell{X: 1, Y: 1}},
			[]Passenger{{Cell: Cell{X: 3, Y: 3}, Dest: Cell{X: 1, Y: 3}}},
			stations, RewardWeights{}, code, 0.99, 0, 5)
		require.NoError(t, err)
		return taxi
	}

	stations := []HotswapStation{{Cell: Cell{X: 2, Y: 2}}}

	t.Run("identical environments", func(t *testing.T) {
		a := build(stations, []int{1, 0, 1})
		b := build(stations, []int{1, 0, 1})

		d := a.MeasureVisualDissimilarity(a.InitialState(), b,
			b.InitialState())
		require.Equal(t, 0.0, d)
	})

	t.Run("differing environments", func(t *testing.T) {
		a := build(stations, []int{1, 0, 1})
		b := build(nil, []int{0, 1, 1})

		d := a.MeasureVisualDissimilarity(a.InitialState(), b,
			b.InitialState())

		// At minimum the env-code difference (2) and the station-count
		// difference (1) register
		require.GreaterOrEqual(t, d, 3.0)
	})

	t.Run("symmetric for identical codes", func(t *testing.T) {
		a := build(stations, []int{1, 0, 1})
		b := build(stations, []int{1, 1, 1})

		ab := a.MeasureVisualDissimilarity(a.InitialState(), b,
			b.InitialState())
		ba := b.MeasureVisualDissimilarity(b.InitialState(), a,
			a.InitialState())
		require.Equal(t, ab, ba)
	})
}
