package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gotaxi/timestep"
)

// FunctionEnder implements the Ender interface to end episodes
// whenever some predicate of the observation vector becomes true
type FunctionEnder struct {
	f       func(*mat.VecDense) bool
	endType timestep.EndType
}

// NewFunctionEnder creates and returns a new FunctionEnder, ending
// episodes whenever f evaluates to true on the current observation.
// The endType argument determines what the episode end should be
// considered as.
func NewFunctionEnder(f func(*mat.VecDense) bool,
	endType timestep.EndType) Ender {
	return FunctionEnder{f, endType}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended, End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is the appropriate ending
// type.
func (f FunctionEnder) End(t *timestep.TimeStep) bool {
	obs, ok := t.Observation.(*mat.VecDense)
	if !ok {
		obs = mat.VecDenseCopyOf(t.Observation)
	}

	if f.f(obs) {
		t.StepType = timestep.Last
		t.SetEnd(f.endType)
		return true
	}
	return false
}
