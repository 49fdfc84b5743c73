package smithwilson

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/swcurve/smithwilson/config"
	"github.com/meenmo/swcurve/utils"
)

// monthsPerYear fixes the curve grid at tau = j/12.
const monthsPerYear = 12

// BuildCurve returns the curve on the monthly grid tau = j/12, j = 1..lengthMonths.
// Index 0 holds tau = 1/12. The kernel system is solved once for all points.
func BuildCurve(obs []Observation, ufr, alpha float64, lengthMonths int) ([]float64, error) {
	if err := validateLength(lengthMonths); err != nil {
		return nil, fmt.Errorf("BuildCurve: %w", err)
	}
	c, err := Fit(obs, ufr, alpha)
	if err != nil {
		return nil, fmt.Errorf("BuildCurve: %w", err)
	}
	return c.Grid(lengthMonths)
}

// BuildCurveParallel returns the same values as BuildCurve, evaluating grid
// points concurrently. The fit happens once before fan-out; workers only read
// the fitted curve and write disjoint output slots.
func BuildCurveParallel(obs []Observation, ufr, alpha float64, lengthMonths int) ([]float64, error) {
	if err := validateLength(lengthMonths); err != nil {
		return nil, fmt.Errorf("BuildCurveParallel: %w", err)
	}
	c, err := Fit(obs, ufr, alpha)
	if err != nil {
		return nil, fmt.Errorf("BuildCurveParallel: %w", err)
	}
	return c.GridParallel(lengthMonths)
}

// Grid evaluates the fitted curve on the first lengthMonths grid points.
func (c *Curve) Grid(lengthMonths int) ([]float64, error) {
	if err := validateLength(lengthMonths); err != nil {
		return nil, fmt.Errorf("Grid: %w", err)
	}
	out := make([]float64, lengthMonths)
	for j := range out {
		p, err := c.PriceAt(utils.GridTenor(j, monthsPerYear))
		if err != nil {
			return nil, fmt.Errorf("Grid: point %d: %w", j, err)
		}
		out[j] = p
	}
	return out, nil
}

// GridParallel is Grid with the points split into contiguous chunks and
// evaluated by at most config.Workers goroutines. It returns after every
// chunk has finished, with the first error encountered if any.
func (c *Curve) GridParallel(lengthMonths int) ([]float64, error) {
	if err := validateLength(lengthMonths); err != nil {
		return nil, fmt.Errorf("GridParallel: %w", err)
	}
	cfg := config.GetConfig()
	chunk := cfg.EffectiveChunkSize(lengthMonths)
	out := make([]float64, lengthMonths)

	var g errgroup.Group
	g.SetLimit(cfg.EffectiveWorkers())
	for start := 0; start < lengthMonths; start += chunk {
		start := start
		end := min(start+chunk, lengthMonths)
		g.Go(func() error {
			for j := start; j < end; j++ {
				p, err := c.PriceAt(utils.GridTenor(j, monthsPerYear))
				if err != nil {
					return fmt.Errorf("GridParallel: point %d: %w", j, err)
				}
				out[j] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GridTenors returns the tenors evaluated by Grid, in output order.
func GridTenors(lengthMonths int) []float64 {
	return utils.MonthlyTenors(lengthMonths, monthsPerYear)
}

func validateLength(lengthMonths int) error {
	if lengthMonths <= 0 {
		return fmt.Errorf("%w: curve length must be positive, got %d", ErrInvalidInput, lengthMonths)
	}
	return nil
}

