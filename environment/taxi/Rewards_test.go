package taxi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewardFeaturesTollChargedOnExit(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Tolls = []Cell{{X: 2, Y: 1}}

	taxi := newTestTaxi(t, grid,
		Agent{Cell: Cell{X: 1, Y: 1}},
		[]Passenger{{Cell: Cell{X: 3, Y: 3}, Dest: Cell{X: 1, Y: 3}}},
		nil)

	state := taxi.CurrentState()

	// Entering the toll cell is free
	onToll, err := taxi.Transition(state, Right)
	require.NoError(t, err)
	require.Equal(t, Cell{X: 2, Y: 1}, onToll.Agent.Cell)
	features := taxi.RewardFeatures(state, Right, onToll)
	require.Equal(t, 0.0, features.Toll)
	require.Equal(t, 1.0, features.StepCost)

	// Leaving it charges the toll channel
	offToll, err := taxi.Transition(onToll, Right)
	require.NoError(t, err)
	features = taxi.RewardFeatures(onToll, Right, offToll)
	require.Equal(t, 1.0, features.Toll)

	// Staying put does not
	stuck, err := taxi.Transition(onToll, Pickup)
	require.NoError(t, err)
	features = taxi.RewardFeatures(onToll, Pickup, stuck)
	require.Equal(t, 0.0, features.Toll)
}

func TestRewardFeaturesHotswapChannel(t *testing.T) {
	taxi := newTestTaxi(t, openGrid(3, 3),
		Agent{Cell: Cell{X: 2, Y: 2}},
		[]Passenger{{Cell: Cell{X: 1, Y: 1}, Dest: Cell{X: 3, Y: 3}}},
		[]HotswapStation{{Cell: Cell{X: 2, Y: 2}}})

	state := taxi.CurrentState()
	next, err := taxi.Transition(state, Up)
	require.NoError(t, err)
	require.Len(t, next.Stations, 0)

	features := taxi.RewardFeatures(state, Up, next)
	require.Equal(t, 1.0, features.Hotswap)

	// With no stations left, the channel stays dark
	after, err := taxi.Transition(next, Down)
	require.NoError(t, err)
	features = taxi.RewardFeatures(next, Down, after)
	require.Equal(t, 0.0, features.Hotswap)
}

func TestRewardFeaturesDarkChannelsStayZero(t *testing.T) {
	// A configuration with no tolls and no hotswap stations can never
	// light those channels, while step cost is always 1
	taxi := newTestTaxi(t, openGrid(4, 4),
		Agent{Cell: Cell{X: 1, Y: 1}},
		[]Passenger{{Cell: Cell{X: 4, Y: 4}, Dest: Cell{X: 1, Y: 4}}},
		nil)

	mask := taxi.RewardFeatureMask()
	require.False(t, mask.Toll)
	require.False(t, mask.Hotswap)
	require.True(t, mask.StepCost)

	state := taxi.CurrentState()
	for _, action := range taxi.ActionSet() {
		next, err := taxi.Transition(state, action)
		require.NoError(t, err)

		features := taxi.RewardFeatures(state, action, next)
		require.Equal(t, 0.0, features.Toll)
		require.Equal(t, 0.0, features.Hotswap)
		require.Equal(t, 1.0, features.StepCost)

		state = next
	}
}

func TestRewardIsWeightedDotProduct(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Tolls = []Cell{{X: 1, Y: 1}}

	taxi := newTestTaxi(t, grid,
		Agent{Cell: Cell{X: 1, Y: 1}},
		[]Passenger{{Cell: Cell{X: 3, Y: 3}, Dest: Cell{X: 1, Y: 3}}},
		[]HotswapStation{{Cell: Cell{X: 1, Y: 1}}})

	state := taxi.CurrentState()
	next, err := taxi.Transition(state, Right)
	require.NoError(t, err)

	// Exiting a cell that is both a toll and a station charges all
	// three channels at once
	w := DefaultRewardWeights()
	want := w.Toll + w.Hotswap + w.StepCost
	require.InDelta(t, want, taxi.Reward(state, Right, next), 1e-12)
}

func TestAccumulateRewardFeatures(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Tolls = []Cell{{X: 1, Y: 1}}

	taxi := newTestTaxi(t, grid,
		Agent{Cell: Cell{X: 1, Y: 1}},
		[]Passenger{{Cell: Cell{X: 3, Y: 3}, Dest: Cell{X: 1, Y: 3}}},
		nil)

	// Walk off the toll, then wander
	var trajectory Trajectory
	state := taxi.CurrentState()
	for _, action := range []Action{Right, Up, Left} {
		next, err := taxi.Transition(state, action)
		require.NoError(t, err)
		trajectory = append(trajectory, SAS{state, action, next})
		state = next
	}

	t.Run("undiscounted", func(t *testing.T) {
		total := taxi.AccumulateRewardFeatures(trajectory, false)
		require.Equal(t, 1.0, total.Toll)
		require.Equal(t, 0.0, total.Hotswap)
		require.Equal(t, 3.0, total.StepCost)
	})

	t.Run("discounted", func(t *testing.T) {
		// The toll is paid on the first transition, so its discount
		// factor is gamma^0
		gamma := 0.99
		total := taxi.AccumulateRewardFeatures(trajectory, true)
		require.InDelta(t, 1.0, total.Toll, 1e-12)
		require.InDelta(t, 1+gamma+math.Pow(gamma, 2), total.StepCost, 1e-12)
	})
}

func TestDeliverRewardBounds(t *testing.T) {
	grid := openGrid(3, 3)
	grid.Tolls = []Cell{{X: 1, Y: 1}}

	task := NewDeliver(100)
	_, _, err := New(task, grid, Agent{Cell: Cell{X: 1, Y: 1}},
		[]Passenger{{Cell: Cell{X: 3, Y: 3}, Dest: Cell{X: 1, Y: 3}}},
		[]HotswapStation{{Cell: Cell{X: 2, Y: 2}}},
		RewardWeights{}, nil, 0.99, 0, 3)
	require.NoError(t, err)

	w := DefaultRewardWeights()
	require.Equal(t, w.StepCost+w.Hotswap, task.Min())
	require.Equal(t, w.StepCost+w.Toll, task.Max())
}
