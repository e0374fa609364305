package taxi

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Agent is the taxi itself. The fuel attribute is optional: it is
// meaningful only when TracksFuel is set, which happens once at
// environment construction for worlds that manage fuel.
type Agent struct {
	Cell
	HasPassenger bool
	Fuel         float64
	TracksFuel   bool
}

// Passenger is a passenger waiting at a cell or riding in the taxi,
// together with its destination cell
type Passenger struct {
	Cell
	Dest   Cell
	InTaxi bool
}

// Delivered returns whether the passenger has been dropped off at its
// destination
func (p Passenger) Delivered() bool {
	return p.Cell == p.Dest && !p.InTaxi
}

// HotswapStation is a consumable station occupying a cell. Stations
// are removed from the state when the agent moves off of them and are
// never added back.
type HotswapStation struct {
	Cell
}

// State is a snapshot of the mutable world objects of a taxi
// environment: the agent, the passengers, and the remaining hotswap
// stations. States are values: every transition consumes one State and
// constructs a new, independent one, so callers may hold references to
// historical states safely.
type State struct {
	Agent      Agent
	Passengers []Passenger
	Stations   []HotswapStation

	Terminal bool
	Goal     bool
}

// Copy returns an independent copy of the state. The copy shares no
// memory with the original, so mutating one never affects the other.
func (s State) Copy() State {
	next := s
	next.Passengers = append([]Passenger(nil), s.Passengers...)
	next.Stations = append([]HotswapStation(nil), s.Stations...)
	return next
}

// Equal returns whether two states are identical in every attribute
func (s State) Equal(other State) bool {
	if s.Agent != other.Agent || s.Terminal != other.Terminal ||
		s.Goal != other.Goal {
		return false
	}
	if len(s.Passengers) != len(other.Passengers) ||
		len(s.Stations) != len(other.Stations) {
		return false
	}
	for i := range s.Passengers {
		if s.Passengers[i] != other.Passengers[i] {
			return false
		}
	}
	for i := range s.Stations {
		if s.Stations[i] != other.Stations[i] {
			return false
		}
	}
	return true
}

// Hash returns a stable structural hash of the state. Equal states
// hash equally. The hash is stable across runs of this implementation
// but is not portable to other implementations of the environment.
func (s State) Hash() uint64 {
	h := fnv.New64a()

	writeInt := func(i int) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(i)))
		h.Write(buf[:])
	}
	writeBool := func(b bool) {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	writeInt(s.Agent.X)
	writeInt(s.Agent.Y)
	writeBool(s.Agent.HasPassenger)
	writeBool(s.Agent.TracksFuel)
	if s.Agent.TracksFuel {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(s.Agent.Fuel))
		h.Write(buf[:])
	}

	for _, p := range s.Passengers {
		writeInt(p.X)
		writeInt(p.Y)
		writeInt(p.Dest.X)
		writeInt(p.Dest.Y)
		writeBool(p.InTaxi)
	}
	for _, st := range s.Stations {
		writeInt(st.X)
		writeInt(st.Y)
	}

	writeBool(s.Terminal)
	writeBool(s.Goal)

	return h.Sum64()
}

// delivered returns whether every passenger has been dropped off at
// its destination, which is the goal condition of the environment
func (s State) delivered() bool {
	for _, p := range s.Passengers {
		if !p.Delivered() {
			return false
		}
	}
	return true
}

// inTaxiCount returns the number of passengers currently riding in the
// taxi. Legal states never have more than one.
func (s State) inTaxiCount() int {
	count := 0
	for _, p := range s.Passengers {
		if p.InTaxi {
			count++
		}
	}
	return count
}

// update recomputes the state's derived attributes after any object
// attribute mutation. All states must be updated before being returned
// from a transition.
func (s *State) update() {
	s.Agent.HasPassenger = s.inTaxiCount() > 0
}

// validate checks that a state is well-formed with respect to the
// world geometry. A malformed state is a configuration error, distinct
// from the legal "nothing happens" outcomes of the action rules.
func (s State) validate(g Grid) error {
	if !g.InBounds(s.Agent.Cell) {
		return fmt.Errorf("agent at %v outside grid bounds (%d x %d)",
			s.Agent.Cell, g.Width, g.Height)
	}
	if len(s.Passengers) == 0 {
		return fmt.Errorf("state has no passengers")
	}

	riding := s.inTaxiCount()
	if riding > 1 {
		return fmt.Errorf("%d passengers in taxi, at most 1 allowed", riding)
	}
	if (riding == 1) != s.Agent.HasPassenger {
		return fmt.Errorf("agent has_passenger=%v but %d passengers in taxi",
			s.Agent.HasPassenger, riding)
	}
	return nil
}

// Observation layout. Observations are fixed-length vectors:
//
//	[0]			agent x
//	[1]			agent y
//	[2]			1 if the agent carries a passenger, else 0
//	[3]			agent fuel (only present when fuel is tracked)
//	...			x, y, dest x, dest y, in-taxi flag per passenger
//	[len-1]		number of hotswap stations remaining
const passengerObsLen int = 5

func obsBase(trackFuel bool) int {
	if trackFuel {
		return 4
	}
	return 3
}

// obsLen returns the observation vector length for a world with the
// given number of passengers
func obsLen(passengers int, trackFuel bool) int {
	return obsBase(trackFuel) + passengerObsLen*passengers + 1
}

// Observation returns the state as a fixed-length observation vector
func (s State) Observation() *mat.VecDense {
	obs := make([]float64, 0, obsLen(len(s.Passengers), s.Agent.TracksFuel))

	obs = append(obs, float64(s.Agent.X), float64(s.Agent.Y))
	if s.Agent.HasPassenger {
		obs = append(obs, 1)
	} else {
		obs = append(obs, 0)
	}
	if s.Agent.TracksFuel {
		obs = append(obs, s.Agent.Fuel)
	}

	for _, p := range s.Passengers {
		inTaxi := 0.0
		if p.InTaxi {
			inTaxi = 1.0
		}
		obs = append(obs, float64(p.X), float64(p.Y), float64(p.Dest.X),
			float64(p.Dest.Y), inTaxi)
	}

	obs = append(obs, float64(len(s.Stations)))

	return mat.NewVecDense(len(obs), obs)
}

// stateFromObservation reconstructs a State from an observation
// vector. Station positions are not part of the observation, only the
// remaining count, so the reconstructed stations carry zero cells;
// this suffices for the reward computation, which only compares
// counts.
func stateFromObservation(v mat.Vector, trackFuel bool) State {
	base := obsBase(trackFuel)
	passengers := (v.Len() - base - 1) / passengerObsLen

	var state State
	state.Agent.X = int(v.AtVec(0))
	state.Agent.Y = int(v.AtVec(1))
	state.Agent.HasPassenger = v.AtVec(2) != 0
	if trackFuel {
		state.Agent.TracksFuel = true
		state.Agent.Fuel = v.AtVec(3)
	}

	for i := 0; i < passengers; i++ {
		at := base + i*passengerObsLen
		state.Passengers = append(state.Passengers, Passenger{
			Cell:   Cell{int(v.AtVec(at)), int(v.AtVec(at + 1))},
			Dest:   Cell{int(v.AtVec(at + 2)), int(v.AtVec(at + 3))},
			InTaxi: v.AtVec(at+4) != 0,
		})
	}

	state.Stations = make([]HotswapStation, int(v.AtVec(v.Len()-1)))

	return state
}
