// Package taxi implements the taxi grid-world environment of
// Dietterich's MAXQ paper, extended with tolls, traffic, fuel, and
// consumable hotswap stations.
//
// The taxi navigates a bounded grid, picking up and delivering
// passengers. Navigation actions stochastically fail with a baseline
// slip probability, compounded by per-cell traffic probabilities.
// Rewards are a weighted sum of interpretable binary features: a toll
// feature charged when the taxi exits a toll cell, a hotswap feature
// charged when the taxi consumes a hotswap station, and a flat
// per-step cost feature.
package taxi

import (
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	env "github.com/samuelfneumann/gotaxi/environment"
	ts "github.com/samuelfneumann/gotaxi/timestep"
)

// FuelStepAmount is the amount of fuel consumed on every transition of
// a fuel-tracking environment, whether or not the action succeeds
const FuelStepAmount float64 = 1.0

// Action is a discrete taxi action. Navigation actions may be blocked
// by slips, walls, and grid bounds; Pickup, Dropoff, and Refuel always
// execute, though they may legally do nothing.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
	Pickup
	Dropoff
	Refuel
)

func (a Action) String() string {
	switch a {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Pickup:
		return "pickup"
	case Dropoff:
		return "dropoff"
	case Refuel:
		return "refuel"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// BaseActions returns the action set of environments without fuel
// tracking
func BaseActions() []Action {
	return []Action{Up, Down, Left, Right, Pickup, Dropoff}
}

// AugmentedActions returns the action set of fuel-tracking
// environments, which adds the Refuel action
func AugmentedActions() []Action {
	return []Action{Up, Down, Left, Right, Pickup, Dropoff, Refuel}
}

// Taxi implements the taxi environment. The world geometry and feature
// placement are fixed per episode by a Grid; the mutable objects flow
// through State values, one fresh value per transition.
//
// Taxi implements the environment.Environment interface.
type Taxi struct {
	env.Task

	grid     Grid
	weights  RewardWeights
	mask     FeatureMask
	envCode  []int
	discount float64

	// stepCost is kept for interface compatibility with earlier
	// versions of the environment. The per-step cost is carried by the
	// step-cost channel of the reward weights, not by this field.
	stepCost float64

	trackFuel bool

	initState   State
	state       State
	currentStep ts.TimeStep

	uniform distuv.Uniform
}

// New constructs a new Taxi environment from its static geometry, the
// initial mutable objects, and the reward weighting. If weights is the
// zero value, DefaultRewardWeights is used. The envCode argument is an
// opaque identifier consumed only by the environment-selection
// measures. Fuel tracking is activated once, here, when the grid has
// any fuel station or the agent carries a fuel attribute; the Refuel
// action is legal only in fuel-tracking environments.
//
// If task is a *Deliver, the environment registers itself with the
// task.
func New(task env.Task, grid Grid, agent Agent, passengers []Passenger,
	stations []HotswapStation, weights RewardWeights, envCode []int,
	discount, stepCost float64, seed uint64) (*Taxi, ts.TimeStep, error) {

	if err := grid.validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	if discount <= 0 || discount > 1 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: discount %v ∉ "+
			"(0, 1]", discount)
	}

	if weights == (RewardWeights{}) {
		weights = DefaultRewardWeights()
	}

	trackFuel := agent.TracksFuel || len(grid.FuelStations) > 0
	agent.TracksFuel = trackFuel

	initState := State{
		Agent:      agent,
		Passengers: append([]Passenger(nil), passengers...),
		Stations:   append([]HotswapStation(nil), stations...),
	}
	initState.update()
	if err := initState.validate(grid); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: invalid initial "+
			"state: %v", err)
	}

	taxi := &Taxi{
		Task:     task,
		grid:     grid,
		weights:  weights,
		mask:     newFeatureMask(grid, stations),
		envCode:  append([]int(nil), envCode...),
		discount: discount,
		stepCost: stepCost,

		trackFuel: trackFuel,
		initState: initState,
		state:     initState.Copy(),

		uniform: distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)},
	}

	if deliver, ok := task.(*Deliver); ok {
		deliver.Register(taxi)
	}

	firstStep := ts.New(ts.First, 0, discount, taxi.state.Observation(), 0)
	taxi.currentStep = firstStep

	return taxi, firstStep, nil
}

// Seed reseeds the environment's source of randomness. Transitions are
// deterministic functions of the state, the action, and this stream,
// so reseeding before identical action sequences reproduces identical
// trajectories.
func (t *Taxi) Seed(seed uint64) {
	t.uniform.Src = rand.NewSource(seed)
}

// ActionSet returns the legal actions of this environment: the base
// set of 6, or the augmented set of 7 when fuel is tracked
func (t *Taxi) ActionSet() []Action {
	if t.trackFuel {
		return AugmentedActions()
	}
	return BaseActions()
}

// TracksFuel returns whether this environment manages a fuel resource
func (t *Taxi) TracksFuel() bool {
	return t.trackFuel
}

// InitialState returns a copy of the environment's initial state
func (t *Taxi) InitialState() State {
	return t.initState.Copy()
}

// CurrentState returns a copy of the environment's current state
func (t *Taxi) CurrentState() State {
	return t.state.Copy()
}

// EnvCode returns the environment's opaque identifier code
func (t *Taxi) EnvCode() []int {
	return append([]int(nil), t.envCode...)
}

// validateAction checks that an action belongs to the active action
// set. An action outside the set is a configuration error, detected
// before any state is touched.
func (t *Taxi) validateAction(action Action) error {
	last := Dropoff
	if t.trackFuel {
		last = Refuel
	}
	if action < Up || action > last {
		return fmt.Errorf("action %v not in action set %v", action,
			t.ActionSet())
	}
	return nil
}

// Transition computes the successor of state under action. The
// argument state is never mutated; the returned state is a fresh,
// independent value.
//
// A terminal state is absorbing: every action returns it unchanged.
// Otherwise the transition draws the stochastic slip and traffic
// outcomes, decrements fuel where tracked, dispatches to the matching
// action rule, consumes any hotswap station the agent moved off of,
// and marks the result terminal when every passenger has been
// delivered.
//
// Transition returns an error only for configuration errors: an action
// outside the active action set, or a malformed state. Illegal moves
// (walls, bounds) and ineffective pickup/dropoff/refuel actions are
// legal no-ops, not errors.
func (t *Taxi) Transition(state State, action Action) (State, error) {
	if err := t.validateAction(action); err != nil {
		return State{}, err
	}
	if err := state.validate(t.grid); err != nil {
		return State{}, err
	}

	if state.Terminal {
		return state.Copy(), nil
	}
	if state.delivered() {
		// The goal predicate already holds, so the state is marked and
		// absorbed without executing the action
		next := state.Copy()
		next.Terminal = true
		next.Goal = true
		next.update()
		return next, nil
	}

	// Baseline slip and per-cell traffic compound: either draw can
	// block a navigation action
	stuck := t.uniform.Rand() < t.grid.SlipProb
	if prob, at := t.grid.TrafficAt(state.Agent.Cell); at {
		if t.uniform.Rand() < prob {
			stuck = true
		}
	}

	cur := state.Copy()
	if t.trackFuel {
		// Fuel burns every step, even when the action is blocked
		cur.Agent.Fuel -= FuelStepAmount
	}

	var next State
	switch {
	case action == Up && cur.Agent.Y < t.grid.Height && !stuck:
		next = t.moveAgent(cur, 0, 1)
	case action == Down && cur.Agent.Y > 1 && !stuck:
		next = t.moveAgent(cur, 0, -1)
	case action == Right && cur.Agent.X < t.grid.Width && !stuck:
		next = t.moveAgent(cur, 1, 0)
	case action == Left && cur.Agent.X > 1 && !stuck:
		next = t.moveAgent(cur, -1, 0)
	case action == Pickup:
		next = t.agentPickup(cur)
	case action == Dropoff:
		next = t.agentDropoff(cur)
	case action == Refuel:
		next = t.agentRefuel(cur)
	default:
		// Blocked navigation
		next = cur.Copy()
	}

	// Consume the first hotswap station the agent moved off of. The
	// station indices of next still mirror those of state here, since
	// no action rule touches stations.
	if i, moved := movedOffOf(stationCells(state.Stations), state,
		next); moved {
		next.Stations = append(next.Stations[:i], next.Stations[i+1:]...)
	}

	if next.delivered() {
		next.Terminal = true
		next.Goal = true
	}

	next.update()
	return next, nil
}

// moveAgent translates the agent by (dx, dy), carrying along the
// passenger riding in the taxi, if any. If a wall separates the
// agent's cell from the destination cell, an unchanged copy is
// returned.
func (t *Taxi) moveAgent(state State, dx, dy int) State {
	next := state.Copy()

	dest := Cell{state.Agent.X + dx, state.Agent.Y + dy}
	if t.grid.WallBetween(state.Agent.Cell, dest) {
		return next
	}

	next.Agent.X += dx
	next.Agent.Y += dy
	for i := range next.Passengers {
		if next.Passengers[i].InTaxi {
			next.Passengers[i].X += dx
			next.Passengers[i].Y += dy
		}
	}

	return next
}

// agentPickup picks up the first passenger co-located with the agent
// and not already in the taxi. Nothing happens if the agent already
// carries a passenger or no passenger is eligible.
func (t *Taxi) agentPickup(state State) State {
	next := state.Copy()

	if next.Agent.HasPassenger {
		return next
	}

	for i := range next.Passengers {
		p := &next.Passengers[i]
		if p.Cell == next.Agent.Cell && !p.InTaxi {
			p.InTaxi = true
			next.Agent.HasPassenger = true
			break
		}
	}

	return next
}

// agentDropoff releases the first passenger riding in the taxi,
// wherever the taxi currently is. Whether the passenger was delivered
// to its destination is the goal check's concern, not dropoff's.
func (t *Taxi) agentDropoff(state State) State {
	next := state.Copy()

	if !next.Agent.HasPassenger {
		return next
	}

	for i := range next.Passengers {
		if next.Passengers[i].InTaxi {
			next.Passengers[i].InTaxi = false
			next.Agent.HasPassenger = false
			break
		}
	}

	return next
}

// agentRefuel fills the agent's tank to the capacity of the fuel
// station at the agent's cell. Nothing happens away from a fuel
// station.
func (t *Taxi) agentRefuel(state State) State {
	next := state.Copy()

	if capacity, at := t.grid.FuelStationAt(next.Agent.Cell); at {
		next.Agent.Fuel = capacity
	}

	return next
}

// stationCells returns the cells occupied by a list of hotswap
// stations, in list order
func stationCells(stations []HotswapStation) []Cell {
	cells := make([]Cell, len(stations))
	for i, s := range stations {
		cells[i] = s.Cell
	}
	return cells
}

// Step takes one environmental step given action a and returns the
// next timestep and a bool indicating whether the episode has ended.
// Actions are 1-dimensional discrete vectors whose integer value maps
// onto the Action enumeration.
func (t *Taxi) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() > 1 {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions must be " +
			"1-dimensional")
	}

	action := Action(int(a.AtVec(0)))

	prev := t.state
	next, err := t.Transition(prev, action)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}

	reward := t.Reward(prev, action, next)
	step := ts.New(ts.Mid, reward, t.discount, next.Observation(),
		t.currentStep.Number+1)

	last := t.End(&step)
	if next.Terminal && !last {
		step.StepType = ts.Last
		step.SetEnd(ts.TerminalStateReached)
		last = true
	}

	t.state = next
	t.currentStep = step

	return step, last, nil
}

// Reset resets the environment to its initial state between episodes
func (t *Taxi) Reset() (ts.TimeStep, error) {
	t.state = t.initState.Copy()
	startStep := ts.New(ts.First, 0, t.discount, t.state.Observation(), 0)
	t.currentStep = startStep

	return startStep, nil
}

// CurrentTimeStep returns the last timestep of the environment
func (t *Taxi) CurrentTimeStep() ts.TimeStep {
	return t.currentStep
}

// ObservationSpec returns the observation specification of the
// environment
func (t *Taxi) ObservationSpec() env.Spec {
	n := obsLen(len(t.initState.Passengers), t.trackFuel)

	lower := make([]float64, 0, n)
	upper := make([]float64, 0, n)
	w, h := float64(t.grid.Width), float64(t.grid.Height)

	lower = append(lower, 1, 1, 0)
	upper = append(upper, w, h, 1)
	if t.trackFuel {
		// Fuel is unbounded below: exhaustion does not end episodes
		lower = append(lower, math.Inf(-1))
		maxCap := t.initState.Agent.Fuel
		for _, f := range t.grid.FuelStations {
			if f.Capacity > maxCap {
				maxCap = f.Capacity
			}
		}
		upper = append(upper, maxCap)
	}

	for range t.initState.Passengers {
		lower = append(lower, 1, 1, 1, 1, 0)
		upper = append(upper, w, h, w, h, 1)
	}

	lower = append(lower, 0)
	upper = append(upper, float64(len(t.initState.Stations)))

	shape := mat.NewVecDense(n, nil)
	return env.NewSpec(shape, env.Observation, mat.NewVecDense(n, lower),
		mat.NewVecDense(n, upper), env.Discrete)
}

// ActionSpec returns the action specification of the environment
func (t *Taxi) ActionSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(Up)})
	upperBound := mat.NewVecDense(1,
		[]float64{float64(len(t.ActionSet()) - 1)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// DiscountSpec returns the discounting specification of the
// environment
func (t *Taxi) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{t.discount})

	return env.NewSpec(shape, env.Discount, bound, bound, env.Continuous)
}

// Render renders a text-based version of the environment
func (t *Taxi) Render() {
	var board strings.Builder

	for y := t.grid.Height; y >= 1; y-- {
		for x := 1; x <= t.grid.Width; x++ {
			fmt.Fprintf(&board, "%s ", t.cellGlyph(Cell{x, y}))
		}
		fmt.Fprintln(&board)
	}

	// Clear screen and draw
	os.Stdout.WriteString("\x1b[3;J\x1b[H\x1b[2J")
	fmt.Printf("%v%v\n", &board, t)
}

// cellGlyph chooses the display character for a cell when rendering
func (t *Taxi) cellGlyph(c Cell) string {
	if t.state.Agent.Cell == c {
		if t.state.Agent.HasPassenger {
			return "P"
		}
		return "T"
	}
	for _, p := range t.state.Passengers {
		if p.Cell == c && !p.InTaxi {
			return "p"
		}
		if p.Dest == c {
			return "d"
		}
	}
	for _, s := range t.state.Stations {
		if s.Cell == c {
			return "H"
		}
	}
	if _, at := t.grid.FuelStationAt(c); at {
		return "F"
	}
	for _, toll := range t.grid.Tolls {
		if toll == c {
			return "$"
		}
	}
	if _, at := t.grid.TrafficAt(c); at {
		return "~"
	}
	return "."
}

// String returns a string representation of the environment
func (t *Taxi) String() string {
	return fmt.Sprintf("taxi_h-%d_w-%d", t.grid.Height, t.grid.Width)
}
