package taxi

import (
	"math"
	"strconv"
)

// MeasureEnvComplexity returns a coarse difficulty metric for the
// environment: the number of tolls plus the number of hotswap stations
// remaining in state. When state is nil, the initial station count is
// used.
func (t *Taxi) MeasureEnvComplexity(state *State) int {
	if state == nil {
		return len(t.grid.Tolls) + len(t.initState.Stations)
	}
	return len(t.grid.Tolls) + len(state.Stations)
}

// MeasureVisualDissimilarity returns a hand-crafted structural
// distance between two environments for environment-selection
// heuristics. The distance combines a digit-wise difference of the two
// start states' hash strings, an elementwise difference of the
// environment codes (excluding the trailing element), and the
// difference in hotswap station counts.
//
// The hash comparison is stable within this implementation but is not
// portable across implementations with different state hashes.
func (t *Taxi) MeasureVisualDissimilarity(startState State, other *Taxi,
	otherStartState State) float64 {

	const startStateWeight = 2.0

	var dissimilarity float64

	// Compare only the overlapping hash digits; discrepancies in the
	// remainder surface through the env-code and station-count terms
	hash := strconv.FormatUint(startState.Hash(), 10)
	otherHash := strconv.FormatUint(otherStartState.Hash(), 10)
	overlap := len(hash)
	if len(otherHash) < overlap {
		overlap = len(otherHash)
	}
	for i := 0; i < overlap; i++ {
		diff := float64(hash[i]) - float64(otherHash[i])
		dissimilarity += math.Abs(diff) * startStateWeight
	}

	codes := len(t.envCode)
	if len(other.envCode) < codes {
		codes = len(other.envCode)
	}
	for i := 0; i < codes-1; i++ {
		dissimilarity += math.Abs(float64(t.envCode[i] - other.envCode[i]))
	}

	dissimilarity += math.Abs(float64(len(startState.Stations) -
		len(otherStartState.Stations)))

	return dissimilarity
}
