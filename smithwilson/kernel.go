package smithwilson

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Wilson evaluates the Wilson kernel
//
//	W(u, v) = exp(-l(u+v)) * (a*min - 0.5*exp(-a*max) * (exp(a*min) - exp(-a*min)))
//
// where l is the continuously compounded UFR (logUFR) and a is alpha.
// The kernel is symmetric in u and v. Callers guarantee u, v >= 0 and alpha > 0.
func Wilson(u, v, logUFR, alpha float64) float64 {
	lo, hi := math.Min(u, v), math.Max(u, v)
	return math.Exp(-logUFR*(u+v)) * (alpha*lo - 0.5*math.Exp(-alpha*hi)*(math.Exp(alpha*lo)-math.Exp(-alpha*lo)))
}

// KernelMatrix builds the symmetric matrix W[i][j] = Wilson(t_i, t_j).
// maturities must not be empty.
func KernelMatrix(maturities []float64, logUFR, alpha float64) *mat.SymDense {
	n := len(maturities)
	w := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			w.SetSym(i, j, Wilson(maturities[i], maturities[j], logUFR, alpha))
		}
	}
	return w
}
