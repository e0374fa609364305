package environment_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gotaxi/environment"
	ts "github.com/samuelfneumann/gotaxi/timestep"
)

func TestStepLimitEndsAtCutoff(t *testing.T) {
	ender := env.NewStepLimit(3)
	obs := mat.NewVecDense(1, []float64{0})

	early := ts.New(ts.Mid, 0, 1, obs, 2)
	require.False(t, ender.End(&early))
	require.True(t, early.Mid())

	last := ts.New(ts.Mid, 0, 1, obs, 3)
	require.True(t, ender.End(&last))
	require.True(t, last.Last())
	require.Equal(t, ts.Timeout, last.End())
}

func TestFunctionEnder(t *testing.T) {
	// End the episode once the first observation feature goes negative,
	// e.g. a fuel gauge running dry
	ender := env.NewFunctionEnder(func(obs *mat.VecDense) bool {
		return obs.AtVec(0) < 0
	}, ts.TerminalStateReached)

	alive := ts.New(ts.Mid, 0, 1, mat.NewVecDense(1, []float64{4}), 1)
	require.False(t, ender.End(&alive))

	dry := ts.New(ts.Mid, 0, 1, mat.NewVecDense(1, []float64{-1}), 2)
	require.True(t, ender.End(&dry))
	require.True(t, dry.Last())
	require.Equal(t, ts.TerminalStateReached, dry.End())
}

func TestCategoricalStarterStaysInBounds(t *testing.T) {
	starter := env.NewCategoricalStarter([]int{6, 3}, 17)

	for i := 0; i < 100; i++ {
		start := starter.Start()
		require.Equal(t, 2, start.Len())
		require.GreaterOrEqual(t, start.AtVec(0), 0.0)
		require.Less(t, start.AtVec(0), 6.0)
		require.GreaterOrEqual(t, start.AtVec(1), 0.0)
		require.Less(t, start.AtVec(1), 3.0)
	}
}
