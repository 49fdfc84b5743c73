package smithwilson

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/swcurve/smithwilson/config"
	"github.com/meenmo/swcurve/utils"
)

// Curve is a fitted Smith-Wilson discount curve. It is immutable after Fit
// and safe for concurrent use.
type Curve struct {
	logUFR     float64
	alpha      float64
	maturities []float64
	weights    []float64
}

// Fit solves the Smith-Wilson system for the given observations.
//
// The kernel matrix W and the residuals r_i = P_i - exp(-l*t_i) do not depend
// on the requested tenor, so the weights w = W^-1 r are computed once here and
// every evaluation on the returned curve costs O(N).
func Fit(obs []Observation, ufr, alpha float64) (*Curve, error) {
	if err := validateObservations(obs); err != nil {
		return nil, fmt.Errorf("Fit: %w", err)
	}
	if err := validateParams(ufr, alpha); err != nil {
		return nil, fmt.Errorf("Fit: %w", err)
	}
	if m, dup := duplicateMaturity(obs); dup {
		return nil, fmt.Errorf("Fit: %w: duplicate maturity %g", ErrSingularMatrix, m)
	}

	logUFR := math.Log(1 + ufr)
	n := len(obs)
	maturities := make([]float64, n)
	residuals := make([]float64, n)
	for i, o := range obs {
		maturities[i] = o.Maturity
		residuals[i] = o.Price - math.Exp(-logUFR*o.Maturity)
	}

	weights, err := solveWeights(KernelMatrix(maturities, logUFR, alpha), residuals, config.GetConfig().MaxConditionNumber)
	if err != nil {
		return nil, fmt.Errorf("Fit: %w", err)
	}

	return &Curve{
		logUFR:     logUFR,
		alpha:      alpha,
		maturities: maturities,
		weights:    weights,
	}, nil
}

// solveWeights solves W w = r by Cholesky factorisation. W is symmetric
// positive definite for distinct positive maturities.
func solveWeights(w *mat.SymDense, r []float64, maxCond float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(w); !ok {
		return nil, fmt.Errorf("%w: kernel matrix is not positive definite", ErrSingularMatrix)
	}
	if cond := chol.Cond(); math.IsNaN(cond) || math.IsInf(cond, 0) || (maxCond > 0 && cond > maxCond) {
		return nil, fmt.Errorf("%w: condition number %g", ErrSingularMatrix, cond)
	}

	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, mat.NewVecDense(len(r), r)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}

	weights := make([]float64, len(r))
	for i := range weights {
		weights[i] = sol.AtVec(i)
	}
	if !utils.AllFinite(weights) {
		return nil, fmt.Errorf("%w: non-finite kernel weights", ErrNumerical)
	}
	return weights, nil
}

// PriceAt returns the discount factor (zero-coupon price) at tenor tau.
func (c *Curve) PriceAt(tau float64) (float64, error) {
	if err := validateTenor(tau); err != nil {
		return 0, fmt.Errorf("PriceAt: %w", err)
	}
	p := c.price(tau)
	if !utils.IsFinite(p) {
		return 0, fmt.Errorf("PriceAt: %w: non-finite price at tenor %g", ErrNumerical, tau)
	}
	return p, nil
}

func (c *Curve) price(tau float64) float64 {
	zetaW := 0.0
	for i, t := range c.maturities {
		zetaW += c.weights[i] * Wilson(tau, t, c.logUFR, c.alpha)
	}
	return math.Exp(-c.logUFR*tau) + zetaW
}

// Prices evaluates the curve at each tenor in taus, preserving order.
func (c *Curve) Prices(taus []float64) ([]float64, error) {
	out := make([]float64, len(taus))
	for i, tau := range taus {
		p, err := c.PriceAt(tau)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// ZeroRate returns the continuously compounded zero rate -ln(P(tau))/tau.
func (c *Curve) ZeroRate(tau float64) (float64, error) {
	if tau <= 0 {
		return 0, fmt.Errorf("ZeroRate: %w: tenor must be positive, got %g", ErrInvalidInput, tau)
	}
	p, err := c.PriceAt(tau)
	if err != nil {
		return 0, fmt.Errorf("ZeroRate: %w", err)
	}
	if p <= 0 {
		return 0, fmt.Errorf("ZeroRate: %w: non-positive price %g at tenor %g", ErrNumerical, p, tau)
	}
	return -math.Log(p) / tau, nil
}

// ForwardRate returns the continuously compounded forward rate between t1 and
// t2, ln(P(t1)/P(t2)) / (t2 - t1). For large tenors it tends to LogUFR.
func (c *Curve) ForwardRate(t1, t2 float64) (float64, error) {
	if !(t2 > t1) {
		return 0, fmt.Errorf("ForwardRate: %w: t2 (%g) must be after t1 (%g)", ErrInvalidInput, t2, t1)
	}
	p1, err := c.PriceAt(t1)
	if err != nil {
		return 0, fmt.Errorf("ForwardRate: %w", err)
	}
	p2, err := c.PriceAt(t2)
	if err != nil {
		return 0, fmt.Errorf("ForwardRate: %w", err)
	}
	if p1 <= 0 || p2 <= 0 {
		return 0, fmt.Errorf("ForwardRate: %w: non-positive price on [%g, %g]", ErrNumerical, t1, t2)
	}
	return math.Log(p1/p2) / (t2 - t1), nil
}

// LogUFR returns ln(1+ufr), the continuously compounded ultimate forward rate.
func (c *Curve) LogUFR() float64 { return c.logUFR }

// Alpha returns the mean-reversion speed.
func (c *Curve) Alpha() float64 { return c.alpha }

// Maturities returns a copy of the observed maturities in input order.
func (c *Curve) Maturities() []float64 {
	return append([]float64(nil), c.maturities...)
}

// Weights returns a copy of the kernel weights, aligned with Maturities.
func (c *Curve) Weights() []float64 {
	return append([]float64(nil), c.weights...)
}

// PriceAt fits the observations and returns the curve value at tau.
// Use Fit directly when evaluating more than one tenor.
func PriceAt(obs []Observation, ufr, tau, alpha float64) (float64, error) {
	if err := validateTenor(tau); err != nil {
		return 0, fmt.Errorf("PriceAt: %w", err)
	}
	c, err := Fit(obs, ufr, alpha)
	if err != nil {
		return 0, err
	}
	return c.PriceAt(tau)
}
