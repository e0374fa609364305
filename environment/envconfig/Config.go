// Package envconfig provides configuration structs for constructing
// taxi environments from configuration files. Configurations in this
// package are YAML serializable, so whole environment suites can be
// checked in alongside experiment code.
package envconfig

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	env "github.com/samuelfneumann/gotaxi/environment"
	"github.com/samuelfneumann/gotaxi/environment/taxi"
	ts "github.com/samuelfneumann/gotaxi/timestep"
)

// DefaultEpisodeCutoff is the episode step limit used when a Config
// does not set one
const DefaultEpisodeCutoff int = 500

// DefaultDiscount is the discount factor used when a Config does not
// set one
const DefaultDiscount float64 = 0.99

// CellConfig locates a grid cell
type CellConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// WallConfig describes a wall segment between two adjacent cells
type WallConfig struct {
	From CellConfig `yaml:"from"`
	To   CellConfig `yaml:"to"`
}

// TrafficConfig describes a traffic cell and its slip probability
type TrafficConfig struct {
	X    int     `yaml:"x"`
	Y    int     `yaml:"y"`
	Prob float64 `yaml:"prob"`
}

// FuelStationConfig describes a fuel station and its capacity
type FuelStationConfig struct {
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Capacity float64 `yaml:"capacity"`
}

// AgentConfig describes the taxi's initial attributes. Fuel is
// optional; setting it activates fuel tracking for the environment.
type AgentConfig struct {
	X    int      `yaml:"x"`
	Y    int      `yaml:"y"`
	Fuel *float64 `yaml:"fuel,omitempty"`
}

// PassengerConfig describes a passenger's initial attributes
type PassengerConfig struct {
	X      int  `yaml:"x"`
	Y      int  `yaml:"y"`
	DestX  int  `yaml:"dest_x"`
	DestY  int  `yaml:"dest_y"`
	InTaxi bool `yaml:"in_taxi,omitempty"`
}

// WeightsConfig describes a reward weighting over the three feature
// channels
type WeightsConfig struct {
	Toll     float64 `yaml:"toll"`
	Hotswap  float64 `yaml:"hotswap"`
	StepCost float64 `yaml:"step_cost"`
}

// Config implements a specific configuration of a taxi environment
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Agent      AgentConfig       `yaml:"agent"`
	Passengers []PassengerConfig `yaml:"passengers"`

	Walls           []WallConfig        `yaml:"walls,omitempty"`
	Tolls           []CellConfig        `yaml:"tolls,omitempty"`
	Traffic         []TrafficConfig     `yaml:"traffic,omitempty"`
	FuelStations    []FuelStationConfig `yaml:"fuel_stations,omitempty"`
	HotswapStations []CellConfig        `yaml:"hotswap_stations,omitempty"`

	SlipProb      float64        `yaml:"slip_prob,omitempty"`
	Discount      float64        `yaml:"discount,omitempty"`
	StepCost      float64        `yaml:"step_cost,omitempty"`
	Weights       *WeightsConfig `yaml:"weights,omitempty"`
	EnvCode       []int          `yaml:"env_code,omitempty"`
	EpisodeCutoff int            `yaml:"episode_cutoff,omitempty"`
}

// Load reads a Config from YAML
func Load(r io.Reader) (Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, fmt.Errorf("load: could not decode config: %v", err)
	}
	return c, nil
}

// LoadFile reads a Config from a YAML file at path
func LoadFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadFile: %v", err)
	}
	defer file.Close()

	return Load(file)
}

// Save writes the Config as YAML
func (c Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("save: could not encode config: %v", err)
	}
	return nil
}

// Create returns the environment described by the Config, seeded with
// seed, as well as the first timestep of the environment
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	grid := taxi.Grid{
		Width:    c.Width,
		Height:   c.Height,
		SlipProb: c.SlipProb,
	}

	for _, w := range c.Walls {
		grid.Walls = append(grid.Walls, taxi.Wall{
			A: taxi.Cell{X: w.From.X, Y: w.From.Y},
			B: taxi.Cell{X: w.To.X, Y: w.To.Y},
		})
	}
	for _, toll := range c.Tolls {
		grid.Tolls = append(grid.Tolls, taxi.Cell{X: toll.X, Y: toll.Y})
	}
	for _, tr := range c.Traffic {
		grid.Traffic = append(grid.Traffic, taxi.TrafficCell{
			Cell: taxi.Cell{X: tr.X, Y: tr.Y},
			Prob: tr.Prob,
		})
	}
	for _, f := range c.FuelStations {
		grid.FuelStations = append(grid.FuelStations, taxi.FuelStation{
			Cell:     taxi.Cell{X: f.X, Y: f.Y},
			Capacity: f.Capacity,
		})
	}

	agent := taxi.Agent{Cell: taxi.Cell{X: c.Agent.X, Y: c.Agent.Y}}
	if c.Agent.Fuel != nil {
		agent.TracksFuel = true
		agent.Fuel = *c.Agent.Fuel
	}

	passengers := make([]taxi.Passenger, len(c.Passengers))
	for i, p := range c.Passengers {
		passengers[i] = taxi.Passenger{
			Cell:   taxi.Cell{X: p.X, Y: p.Y},
			Dest:   taxi.Cell{X: p.DestX, Y: p.DestY},
			InTaxi: p.InTaxi,
		}
	}

	stations := make([]taxi.HotswapStation, len(c.HotswapStations))
	for i, s := range c.HotswapStations {
		stations[i] = taxi.HotswapStation{Cell: taxi.Cell{X: s.X, Y: s.Y}}
	}

	var weights taxi.RewardWeights
	if c.Weights != nil {
		weights = taxi.RewardWeights{
			Toll:     c.Weights.Toll,
			Hotswap:  c.Weights.Hotswap,
			StepCost: c.Weights.StepCost,
		}
	}

	discount := c.Discount
	if discount == 0 {
		discount = DefaultDiscount
	}
	cutoff := c.EpisodeCutoff
	if cutoff == 0 {
		cutoff = DefaultEpisodeCutoff
	}

	task := taxi.NewDeliver(cutoff)
	environment, firstStep, err := taxi.New(task, grid, agent, passengers,
		stations, weights, c.EnvCode, discount, c.StepCost, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	return environment, firstStep, nil
}
