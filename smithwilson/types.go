// Package smithwilson builds discount curves from observed zero-coupon bond
// prices with the Smith-Wilson method. Beyond the last observation the curve
// converges to a prescribed ultimate forward rate (UFR) at a speed set by alpha.
//
// Tenors are plain year fractions. Rates (ufr) are annual decimals, e.g. 0.042.
package smithwilson

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidInput is returned when observations or parameters violate the
	// preconditions of the method (empty set, alpha <= 0, ufr <= -1, ...).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumerical is returned when the kernel system cannot be solved
	// reliably or a result is not finite.
	ErrNumerical = errors.New("numerical error")

	// ErrSingularMatrix is returned when the kernel matrix is not invertible.
	// It matches ErrNumerical under errors.Is.
	ErrSingularMatrix = fmt.Errorf("%w: singular kernel matrix", ErrNumerical)
)

// LegacyCurveLength is the fixed number of monthly points (135 years) the
// spreadsheet add-in always returned from its sequential curve function.
const LegacyCurveLength = 1620

// Observation is one observed zero-coupon bond.
type Observation struct {
	// Maturity is the time to maturity in years. Must be positive.
	Maturity float64
	// Price is the observed price per unit notional (discount factor).
	Price float64
}

// ObservationsFromMatrix converts a two-column (maturity, price) table into
// observations.
func ObservationsFromMatrix(rows [][]float64) ([]Observation, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("ObservationsFromMatrix: %w: no rows", ErrInvalidInput)
	}
	obs := make([]Observation, 0, len(rows))
	for i, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("ObservationsFromMatrix: %w: row %d has %d columns, want 2", ErrInvalidInput, i, len(row))
		}
		obs = append(obs, Observation{Maturity: row[0], Price: row[1]})
	}
	return obs, nil
}

func validateObservations(obs []Observation) error {
	if len(obs) == 0 {
		return fmt.Errorf("%w: at least one observation is required", ErrInvalidInput)
	}
	for i, o := range obs {
		if math.IsNaN(o.Maturity) || math.IsInf(o.Maturity, 0) || o.Maturity <= 0 {
			return fmt.Errorf("%w: observation %d: maturity must be positive and finite, got %g", ErrInvalidInput, i, o.Maturity)
		}
		if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
			return fmt.Errorf("%w: observation %d: price must be finite, got %g", ErrInvalidInput, i, o.Price)
		}
	}
	return nil
}

func validateParams(ufr, alpha float64) error {
	if math.IsNaN(ufr) || math.IsInf(ufr, 0) || ufr <= -1 {
		return fmt.Errorf("%w: ufr must be finite and greater than -1, got %g", ErrInvalidInput, ufr)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || alpha <= 0 {
		return fmt.Errorf("%w: alpha must be positive and finite, got %g", ErrInvalidInput, alpha)
	}
	return nil
}

func validateTenor(tau float64) error {
	if math.IsNaN(tau) || math.IsInf(tau, 0) || tau < 0 {
		return fmt.Errorf("%w: tenor must be non-negative and finite, got %g", ErrInvalidInput, tau)
	}
	return nil
}

// duplicateMaturity returns the first maturity that appears twice in obs.
// Two equal maturities give two identical rows in the kernel matrix.
func duplicateMaturity(obs []Observation) (float64, bool) {
	sorted := make([]float64, len(obs))
	for i, o := range obs {
		sorted[i] = o.Maturity
	}
	sort.Float64s(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return sorted[i], true
		}
	}
	return 0, false
}
