package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigid2d/internal/sim"
)

var ErrNoTrials = errors.New("optim: no trial completed")

// Build prepares a driver and run configuration for one parameter point.
type Build func(params map[string]float64) (*sim.Driver, sim.Config, error)

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates every combination of the parameter ranges and keeps
// the one with the smallest metric value.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point in order. Failed trials are reported but do
// not stop the search; a cancelled context does.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		trial := Trial{Params: params, Value: math.NaN()}
		trial.Value, trial.Err = evaluate(ctx, build, params, metricName)
		trials = append(trials, trial)
		if trial.Err == nil && trial.Value < best {
			best = trial.Value
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, ErrNoTrials
	}
	return bestParams, best, trials, nil
}

func evaluate(ctx context.Context, build Build, params map[string]float64, metricName string) (float64, error) {
	driver, cfg, err := build(params)
	if err != nil {
		return math.NaN(), err
	}

	result, err := driver.Run(ctx, cfg)
	if err != nil {
		return math.NaN(), err
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		return math.NaN(), fmt.Errorf("optim: metric %q not recorded", metricName)
	}
	return val, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
