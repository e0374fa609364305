package taxi

import "fmt"

// Cell identifies a single grid cell. Valid agent coordinates lie in
// [1, width] x [1, height].
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// adjacent returns whether two cells share an edge
func adjacent(a, b Cell) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy == 1
}

// Wall is an unordered pair of adjacent cells whose shared edge blocks
// movement. Walls block movement between the two cells, not occupancy
// of either cell. A fully blocked cell is expressed by listing its
// four bounding segments.
type Wall struct {
	A Cell
	B Cell
}

// TrafficCell is a cell at which navigation actions fail with the
// given probability, in addition to the environment's baseline slip
// probability.
type TrafficCell struct {
	Cell
	Prob float64
}

// FuelStation is a cell at which a refuel action fills the agent's
// tank to the station's capacity.
type FuelStation struct {
	Cell
	Capacity float64
}

// Grid holds the static world geometry and features of a taxi
// environment: the grid bounds, wall segments, toll cells, traffic
// cells, fuel stations, and the baseline slip probability. A Grid is
// built once at environment construction and never changes over an
// episode.
type Grid struct {
	Width  int
	Height int

	Walls        []Wall
	Tolls        []Cell
	Traffic      []TrafficCell
	FuelStations []FuelStation

	// SlipProb is the baseline probability that any navigation action
	// fails to move the agent
	SlipProb float64
}

// validate checks the grid's static configuration once at environment
// construction
func (g Grid) validate() error {
	if g.Width < 1 || g.Height < 1 {
		return fmt.Errorf("grid bounds (%d x %d) must be positive", g.Width,
			g.Height)
	}
	if g.SlipProb < 0 || g.SlipProb > 1 {
		return fmt.Errorf("slip probability %v ∉ [0, 1]", g.SlipProb)
	}
	for _, w := range g.Walls {
		if !adjacent(w.A, w.B) {
			return fmt.Errorf("wall %v-%v does not separate adjacent cells",
				w.A, w.B)
		}
	}
	for _, t := range g.Traffic {
		if t.Prob < 0 || t.Prob > 1 {
			return fmt.Errorf("traffic probability %v at %v ∉ [0, 1]",
				t.Prob, t.Cell)
		}
	}
	return nil
}

// InBounds returns whether a cell lies within the grid
func (g Grid) InBounds(c Cell) bool {
	return c.X >= 1 && c.X <= g.Width && c.Y >= 1 && c.Y <= g.Height
}

// WallBetween returns whether a wall segment separates two adjacent
// cells. The check is symmetric in its arguments.
func (g Grid) WallBetween(a, b Cell) bool {
	for _, w := range g.Walls {
		if (w.A == a && w.B == b) || (w.A == b && w.B == a) {
			return true
		}
	}
	return false
}

// TrafficAt returns the slip probability of the traffic cell at c and
// whether such a traffic cell exists
func (g Grid) TrafficAt(c Cell) (float64, bool) {
	for _, t := range g.Traffic {
		if t.Cell == c {
			return t.Prob, true
		}
	}
	return 0, false
}

// FuelStationAt returns the capacity of the fuel station at c and
// whether such a station exists
func (g Grid) FuelStationAt(c Cell) (float64, bool) {
	for _, f := range g.FuelStations {
		if f.Cell == c {
			return f.Capacity, true
		}
	}
	return 0, false
}

// movedOffOf returns the index of the first cell in cells which the
// agent occupied in state but no longer occupies in nextState, and
// whether any such cell exists. Cells are scanned in order, so ties
// resolve to the first match.
func movedOffOf(cells []Cell, state, nextState State) (int, bool) {
	for i, c := range cells {
		if state.Agent.Cell == c && nextState.Agent.Cell != c {
			return i, true
		}
	}
	return -1, false
}
