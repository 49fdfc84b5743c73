package bond

import (
	"fmt"
	"math"
)

// YieldInput holds the parameters needed to solve for a bond's yield.
type YieldInput struct {
	// DirtyPrice is the full price per 100 notional.
	DirtyPrice float64
	// Cashflows are the remaining cash flows, Time in years from valuation.
	Cashflows []Cashflow
}

// YieldResult is the output of ComputeYield.
type YieldResult struct {
	// Yield is the annually compounded yield in percent (e.g. 4.20).
	Yield float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// PresentValue discounts cfs on curve. Cash flows at negative times have
// already been paid and are ignored.
func PresentValue(cfs []Cashflow, curve DiscountCurve) (float64, error) {
	if curve == nil {
		return 0, fmt.Errorf("PresentValue: DiscountCurve is required")
	}
	pv := 0.0
	for _, cf := range cfs {
		if cf.Time < 0 {
			continue
		}
		df, err := curve.PriceAt(cf.Time)
		if err != nil {
			return 0, fmt.Errorf("PresentValue: cash flow at %g: %w", cf.Time, err)
		}
		pv += cf.Amount() * df
	}
	return pv, nil
}

// ComputeYield solves for the yield y such that
//
//	DirtyPrice = sum CF_k / (1+y)^t_k
//
// using Newton-Raphson with analytic first derivative.
func ComputeYield(in YieldInput) (YieldResult, error) {
	if in.DirtyPrice <= 0 {
		return YieldResult{}, fmt.Errorf("ComputeYield: DirtyPrice must be positive")
	}
	if len(in.Cashflows) == 0 {
		return YieldResult{}, fmt.Errorf("ComputeYield: Cashflows are required")
	}

	y, iterations, err := solveYield(in.DirtyPrice, in.Cashflows)
	if err != nil {
		return YieldResult{}, err
	}
	return YieldResult{
		Yield:      y * 100.0, // decimal → percent
		Iterations: iterations,
	}, nil
}

// YieldOnCurve prices cfs on curve and returns the price with its yield.
func YieldOnCurve(cfs []Cashflow, curve DiscountCurve) (float64, YieldResult, error) {
	pv, err := PresentValue(cfs, curve)
	if err != nil {
		return 0, YieldResult{}, fmt.Errorf("YieldOnCurve: %w", err)
	}
	res, err := ComputeYield(YieldInput{DirtyPrice: pv, Cashflows: cfs})
	if err != nil {
		return pv, YieldResult{}, fmt.Errorf("YieldOnCurve: %w", err)
	}
	return pv, res, nil
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.05
	yieldCeiling   = 0.50
)

// solveYield finds y such that dirtyPrice(y) == target via Newton-Raphson.
func solveYield(target float64, cfs []Cashflow) (float64, int, error) {
	// Initial guess: mid-range (2.5 %).
	y := 0.025

	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := dirtyPriceAndDeriv(y, cfs)
		f := price - target

		if math.Abs(f) < yieldTolerance {
			return y, iter + 1, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, iter + 1, fmt.Errorf("ComputeYield: derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}

	return y, yieldMaxIter, fmt.Errorf("ComputeYield: did not converge after %d iterations", yieldMaxIter)
}

// dirtyPriceAndDeriv returns (price, dPrice/dy):
//
//	price = Σ CF_k / (1+y)^t_k
//	dP/dy = Σ −t_k · CF_k / (1+y)^(t_k+1)
func dirtyPriceAndDeriv(y float64, cfs []Cashflow) (float64, float64) {
	var price, deriv float64
	for _, cf := range cfs {
		if cf.Time < 0 {
			continue
		}
		amt := cf.Amount()
		price += amt / math.Pow(1.0+y, cf.Time)
		deriv += -cf.Time * amt / math.Pow(1.0+y, cf.Time+1)
	}
	return price, deriv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
