package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	env "github.com/samuelfneumann/gotaxi/environment"
	"github.com/samuelfneumann/gotaxi/environment/taxi"
)

// Rolls a uniform random policy through an augmented taxi world and
// reports the accumulated reward features of the trajectory.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var seed uint64 = 192382

	grid := taxi.Grid{
		Width:  10,
		Height: 10,
		Walls: []taxi.Wall{
			{A: taxi.Cell{X: 2, Y: 2}, B: taxi.Cell{X: 3, Y: 2}},
			{A: taxi.Cell{X: 2, Y: 3}, B: taxi.Cell{X: 3, Y: 3}},
		},
		Tolls: []taxi.Cell{{X: 4, Y: 2}},
		Traffic: []taxi.TrafficCell{
			{Cell: taxi.Cell{X: 5, Y: 5}, Prob: 0.3},
		},
		FuelStations: []taxi.FuelStation{
			{Cell: taxi.Cell{X: 10, Y: 1}, Capacity: 20},
		},
		SlipProb: 0.05,
	}

	agent := taxi.Agent{
		Cell:       taxi.Cell{X: 1, Y: 1},
		Fuel:       15,
		TracksFuel: true,
	}
	passengers := []taxi.Passenger{
		{Cell: taxi.Cell{X: 8, Y: 4}, Dest: taxi.Cell{X: 2, Y: 2}},
	}
	stations := []taxi.HotswapStation{{Cell: taxi.Cell{X: 6, Y: 6}}}

	task := taxi.NewDeliver(250)
	t, step, err := taxi.New(task, grid, agent, passengers, stations,
		taxi.RewardWeights{}, []int{1, 0, 1}, 0.99, 0, seed)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create environment")
	}

	log.Info().
		Stringer("env", t).
		Int("actions", len(t.ActionSet())).
		Int("complexity", t.MeasureEnvComplexity(nil)).
		Msg("starting rollout")

	// Uniform random policy over the environment's action set
	policy := env.NewCategoricalStarter([]int{len(t.ActionSet())}, seed)

	var trajectory taxi.Trajectory
	var undiscountedReturn float64

	for !step.Last() {
		prev := t.CurrentState()
		action := policy.Start()

		var last bool
		step, last, err = t.Step(action)
		if err != nil {
			log.Fatal().Err(err).Msg("step failed")
		}

		trajectory = append(trajectory, taxi.SAS{
			State:  prev,
			Action: taxi.Action(int(action.AtVec(0))),
			Next:   t.CurrentState(),
		})
		undiscountedReturn += step.Reward

		if step.Number%50 == 0 || last {
			log.Info().
				Int("step", step.Number).
				Float64("reward", step.Reward).
				Float64("return", undiscountedReturn).
				Bool("goal", t.CurrentState().Goal).
				Msg("rollout progress")
		}
	}

	discounted := t.AccumulateRewardFeatures(trajectory, true)
	total := t.AccumulateRewardFeatures(trajectory, false)

	log.Info().
		Int("steps", len(trajectory)).
		Floats64("discountedFeatures", discounted.Vector().RawVector().Data).
		Floats64("totalFeatures", total.Vector().RawVector().Data).
		Msg("rollout finished")
}
