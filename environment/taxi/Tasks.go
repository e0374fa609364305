package taxi

import (
	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gotaxi/environment"
	ts "github.com/samuelfneumann/gotaxi/timestep"
	"github.com/samuelfneumann/gotaxi/utils/floatutils"
)

// Deliver implements the canonical taxi task: deliver every passenger
// to its destination and release it. The task's reward is the
// environment's weighted feature reward, and episodes end when all
// passengers are delivered or when a step limit cuts the episode off.
//
// A Deliver must be registered with the Taxi it scores before use;
// New does this automatically when handed a *Deliver.
type Deliver struct {
	taxi      *Taxi
	stepLimit env.Ender

	registered bool
}

// NewDeliver creates and returns a new Deliver task with the given
// episode step limit
func NewDeliver(cutoff int) *Deliver {
	return &Deliver{stepLimit: env.NewStepLimit(cutoff)}
}

// Register ties the task to the environment whose transitions it
// scores
func (d *Deliver) Register(t *Taxi) {
	d.taxi = t
	d.registered = true
}

// Start returns the starting state observation of the registered
// environment
func (d *Deliver) Start() *mat.VecDense {
	if !d.registered {
		panic("start: no environment registered")
	}
	return d.taxi.InitialState().Observation()
}

// GetReward returns the reward for a transition between two
// observation vectors. The scalar value is the weighted feature reward
// of the registered environment.
func (d *Deliver) GetReward(state, action, nextState mat.Vector) float64 {
	if !d.registered {
		panic("getReward: no environment registered")
	}

	s := stateFromObservation(state, d.taxi.trackFuel)
	next := stateFromObservation(nextState, d.taxi.trackFuel)
	a := Action(int(action.AtVec(0)))

	return d.taxi.Reward(s, a, next)
}

// AtGoal returns whether the argument observation is a goal state,
// which holds when every passenger is at its destination and out of
// the taxi
func (d *Deliver) AtGoal(state mat.Matrix) bool {
	if !d.registered {
		panic("atGoal: no environment registered")
	}

	obs, ok := state.(mat.Vector)
	if !ok {
		return false
	}

	return stateFromObservation(obs, d.taxi.trackFuel).delivered()
}

// End determines if a timestep is the last in the episode, either by
// reaching the goal state or by exhausting the step limit, adjusting
// the TimeStep's StepType and EndType if so
func (d *Deliver) End(t *ts.TimeStep) bool {
	if d.registered && d.AtGoal(t.Observation) {
		t.StepType = ts.Last
		t.SetEnd(ts.TerminalStateReached)
		return true
	}

	return d.stepLimit.End(t)
}

// Min returns the minimum attainable reward over all timesteps
func (d *Deliver) Min() float64 {
	return floatutils.Min(d.stepRewards()...)
}

// Max returns the maximum attainable reward over all timesteps
func (d *Deliver) Max() float64 {
	return floatutils.Max(d.stepRewards()...)
}

// stepRewards enumerates the attainable per-step rewards of the
// registered environment, one per feasible feature combination
func (d *Deliver) stepRewards() []float64 {
	if !d.registered {
		panic("stepRewards: no environment registered")
	}

	w := d.taxi.weights
	mask := d.taxi.mask

	rewards := []float64{w.StepCost}
	if mask.Toll {
		rewards = append(rewards, w.StepCost+w.Toll)
	}
	if mask.Hotswap {
		rewards = append(rewards, w.StepCost+w.Hotswap)
	}
	if mask.Toll && mask.Hotswap {
		// The agent may exit a cell that is both a toll and a station
		rewards = append(rewards, w.StepCost+w.Toll+w.Hotswap)
	}

	return rewards
}

// RewardSpec returns the reward specification of the Task
func (d *Deliver) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{d.Min()})
	upperBound := mat.NewVecDense(1, []float64{d.Max()})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}
