package utils

import "math"

// MonthlyTenors returns the year fractions 1/perYear, 2/perYear, ..., n/perYear.
func MonthlyTenors(n, perYear int) []float64 {
	if n <= 0 || perYear <= 0 {
		return nil
	}
	tenors := make([]float64, n)
	for j := range tenors {
		tenors[j] = float64(j+1) / float64(perYear)
	}
	return tenors
}

// GridTenor returns the tenor of the 0-based grid index j.
func GridTenor(j, perYear int) float64 {
	return float64(j+1) / float64(perYear)
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllFinite reports whether every element of vs is finite.
func AllFinite(vs []float64) bool {
	for _, v := range vs {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}
