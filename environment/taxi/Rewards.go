package taxi

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RewardWeights are the coefficients of the linear reward over the
// three feature channels. The scalar reward of a transition is the dot
// product of these weights with the transition's FeatureVec.
type RewardWeights struct {
	Toll     float64
	Hotswap  float64
	StepCost float64
}

// DefaultRewardWeights returns the conventional weighting over the
// reward features
func DefaultRewardWeights() RewardWeights {
	return RewardWeights{Toll: 2, Hotswap: -0.4, StepCost: -0.5}
}

// Vector returns the weights as a 3-vector ordered
// (toll, hotswap, step cost)
func (w RewardWeights) Vector() *mat.VecDense {
	return mat.NewVecDense(3, []float64{w.Toll, w.Hotswap, w.StepCost})
}

// FeatureVec is one reward feature vector: the per-transition values
// of the three channels. Individual transitions produce binary
// channels; accumulated, discounted feature vectors are real-valued.
type FeatureVec struct {
	Toll     float64
	Hotswap  float64
	StepCost float64
}

// Vector returns the features as a 3-vector ordered
// (toll, hotswap, step cost)
func (f FeatureVec) Vector() *mat.VecDense {
	return mat.NewVecDense(3, []float64{f.Toll, f.Hotswap, f.StepCost})
}

// add returns the channel-wise sum of two feature vectors
func (f FeatureVec) add(other FeatureVec) FeatureVec {
	return FeatureVec{
		Toll:     f.Toll + other.Toll,
		Hotswap:  f.Hotswap + other.Hotswap,
		StepCost: f.StepCost + other.StepCost,
	}
}

// scale returns the feature vector with every channel scaled by a
func (f FeatureVec) scale(a float64) FeatureVec {
	return FeatureVec{
		Toll:     f.Toll * a,
		Hotswap:  f.Hotswap * a,
		StepCost: f.StepCost * a,
	}
}

// FeatureMask records which reward feature channels are capable of
// being non-zero for a given environment configuration
type FeatureMask struct {
	Toll     bool
	Hotswap  bool
	StepCost bool
}

// newFeatureMask derives the feature capabilities from the world
// geometry and the initial hotswap stations. The step-cost channel is
// always live.
func newFeatureMask(grid Grid, stations []HotswapStation) FeatureMask {
	return FeatureMask{
		Toll:     len(grid.Tolls) > 0,
		Hotswap:  len(stations) > 0,
		StepCost: true,
	}
}

// RewardFeatureMask returns which reward feature channels this
// environment is capable of conveying
func (t *Taxi) RewardFeatureMask() FeatureMask {
	return t.mask
}

// RewardWeightVec returns the environment's reward weights
func (t *Taxi) RewardWeightVec() RewardWeights {
	return t.weights
}

// RewardFeatures maps a (state, action, nextState) transition to its
// feature vector:
//
//   - the toll channel is 1 when the configuration has tolls and the
//     agent exited a toll cell on this transition. Tolls charge on
//     exit, not entry.
//   - the hotswap channel is 1 when the next state lost a hotswap
//     station relative to state, i.e. the agent vacated a station cell
//     on this transition.
//   - the step-cost channel is always 1.
//
// RewardFeatures is a pure function of its arguments. It is the
// caller's responsibility to supply a consistent transition triple.
func (t *Taxi) RewardFeatures(state State, action Action,
	nextState State) FeatureVec {

	features := FeatureVec{StepCost: 1}

	if t.mask.Toll {
		if _, moved := movedOffOf(t.grid.Tolls, state, nextState); moved {
			features.Toll = 1
		}
	}

	if len(state.Stations) != 0 &&
		len(nextState.Stations) < len(state.Stations) {
		features.Hotswap = 1
	}

	return features
}

// Reward returns the scalar reward of a transition: the dot product of
// the environment's reward weights with the transition's features
func (t *Taxi) Reward(state State, action Action, nextState State) float64 {
	features := t.RewardFeatures(state, action, nextState)
	return mat.Dot(t.weights.Vector(), features.Vector())
}

// SAS is one (state, action, nextState) transition of a trajectory
type SAS struct {
	State  State
	Action Action
	Next   State
}

// Trajectory is an ordered sequence of transitions
type Trajectory []SAS

// AccumulateRewardFeatures sums the per-transition feature vectors of
// a trajectory. When discount is true, the transition at step i
// contributes its instantaneous features scaled by gamma^i, with i
// starting at 0 in sequence order; otherwise the raw features are
// summed.
func (t *Taxi) AccumulateRewardFeatures(trajectory Trajectory,
	discount bool) FeatureVec {

	var total FeatureVec

	if discount {
		for step, sas := range trajectory {
			features := t.RewardFeatures(sas.State, sas.Action, sas.Next)
			total = total.add(features.scale(math.Pow(t.discount,
				float64(step))))
		}
	} else {
		for _, sas := range trajectory {
			total = total.add(t.RewardFeatures(sas.State, sas.Action,
				sas.Next))
		}
	}

	return total
}
