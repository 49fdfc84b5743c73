package smithwilson_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/swcurve/smithwilson"
	"github.com/meenmo/swcurve/smithwilson/config"
)

const (
	refUFR   = 0.042
	refAlpha = 0.1
)

func referenceObservations() []smithwilson.Observation {
	return []smithwilson.Observation{
		{Maturity: 1, Price: 0.95},
		{Maturity: 2, Price: 0.90},
		{Maturity: 3, Price: 0.85},
	}
}

// flatObservations prices a 15-point term structure off a flat 3% curve.
func flatObservations() []smithwilson.Observation {
	maturities := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 15, 20, 25, 30}
	obs := make([]smithwilson.Observation, len(maturities))
	for i, m := range maturities {
		obs[i] = smithwilson.Observation{Maturity: m, Price: math.Exp(-0.03 * m)}
	}
	return obs
}

func TestWilson_Symmetric(t *testing.T) {
	t.Parallel()

	logUFR := math.Log(1 + refUFR)
	points := []float64{0, 1.0 / 12, 0.5, 1, 2.5, 10, 30, 120}
	for _, u := range points {
		for _, v := range points {
			require.Equal(t,
				smithwilson.Wilson(u, v, logUFR, refAlpha),
				smithwilson.Wilson(v, u, logUFR, refAlpha),
				"u=%g v=%g", u, v)
		}
	}
}

func TestWilson_ZeroAtOrigin(t *testing.T) {
	t.Parallel()

	logUFR := math.Log(1 + refUFR)
	for _, v := range []float64{0, 1, 20} {
		require.Zero(t, smithwilson.Wilson(0, v, logUFR, refAlpha))
	}
}

func TestKernelMatrix(t *testing.T) {
	t.Parallel()

	logUFR := math.Log(1 + refUFR)
	maturities := []float64{1, 2, 3}
	w := smithwilson.KernelMatrix(maturities, logUFR, refAlpha)

	require.Equal(t, 3, w.SymmetricDim())
	for i, u := range maturities {
		for j, v := range maturities {
			require.Equal(t, smithwilson.Wilson(u, v, logUFR, refAlpha), w.At(i, j))
		}
	}
	require.InDelta(t, 0.008625609744834858, w.At(0, 0), 1e-15)
	require.InDelta(t, 0.04139267571598789, w.At(1, 2), 1e-15)
}

func TestPriceAt_ReferenceScenario(t *testing.T) {
	t.Parallel()

	got, err := smithwilson.PriceAt(referenceObservations(), refUFR, 20, refAlpha)
	require.NoError(t, err)
	require.InDelta(t, 0.3661675002008756, got, 1e-10)
}

func TestPriceAt_InterpolatesObservations(t *testing.T) {
	t.Parallel()

	cases := map[string][]smithwilson.Observation{
		"reference": referenceObservations(),
		"flat3pct":  flatObservations(),
	}
	for name, obs := range cases {
		obs := obs
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, o := range obs {
				got, err := smithwilson.PriceAt(obs, refUFR, o.Maturity, refAlpha)
				require.NoError(t, err)
				require.InEpsilon(t, o.Price, got, 1e-9, "maturity %g", o.Maturity)
			}
		})
	}
}

func TestPriceAt_UnitAtZero(t *testing.T) {
	t.Parallel()

	got, err := smithwilson.PriceAt(referenceObservations(), refUFR, 0, refAlpha)
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}

func TestPriceAt_ConvergesToUFR(t *testing.T) {
	t.Parallel()

	logUFR := math.Log(1 + refUFR)
	for _, obs := range [][]smithwilson.Observation{referenceObservations(), flatObservations()} {
		c, err := smithwilson.Fit(obs, refUFR, refAlpha)
		require.NoError(t, err)

		prev := math.Inf(1)
		for _, tau := range []float64{100, 200, 300, 500} {
			p, err := c.PriceAt(tau)
			require.NoError(t, err)
			gap := math.Abs(p - math.Exp(-logUFR*tau))
			require.Less(t, gap, prev)
			prev = gap
		}
		require.Less(t, prev, 1e-8)

		fwd, err := c.ForwardRate(200, 201)
		require.NoError(t, err)
		require.InDelta(t, logUFR, fwd, 1e-6)
	}
}

func TestFit_DuplicateMaturityIsSingular(t *testing.T) {
	t.Parallel()

	obs := []smithwilson.Observation{
		{Maturity: 1, Price: 0.95},
		{Maturity: 2, Price: 0.90},
		{Maturity: 1, Price: 0.95},
	}

	_, err := smithwilson.Fit(obs, refUFR, refAlpha)
	require.ErrorIs(t, err, smithwilson.ErrSingularMatrix)
	require.ErrorIs(t, err, smithwilson.ErrNumerical)
	require.NotErrorIs(t, err, smithwilson.ErrInvalidInput)

	_, err = smithwilson.PriceAt(obs, refUFR, 5, refAlpha)
	require.ErrorIs(t, err, smithwilson.ErrNumerical)
}

func TestFit_NearDuplicateMaturityIsSingular(t *testing.T) {
	t.Parallel()

	obs := []smithwilson.Observation{
		{Maturity: 1, Price: 0.95},
		{Maturity: 1 + 1e-9, Price: 0.95},
		{Maturity: 2, Price: 0.90},
	}

	_, err := smithwilson.Fit(obs, refUFR, refAlpha)
	require.ErrorIs(t, err, smithwilson.ErrSingularMatrix)
	require.ErrorIs(t, err, smithwilson.ErrNumerical)

	curve, err := smithwilson.BuildCurveParallel(obs, refUFR, refAlpha, 120)
	require.ErrorIs(t, err, smithwilson.ErrSingularMatrix)
	require.Nil(t, curve)
}

// Not parallel: replaces the package configuration.
func TestFit_ConditionNumberLimit(t *testing.T) {
	orig := config.GetConfig()
	defer config.SetConfig(orig)

	_, err := smithwilson.Fit(referenceObservations(), refUFR, refAlpha)
	require.NoError(t, err)

	strict := orig
	strict.MaxConditionNumber = 10
	config.SetConfig(strict)

	_, err = smithwilson.Fit(referenceObservations(), refUFR, refAlpha)
	require.ErrorIs(t, err, smithwilson.ErrSingularMatrix)
	require.ErrorContains(t, err, "condition number")

	_, err = smithwilson.PriceAt(referenceObservations(), refUFR, 20, refAlpha)
	require.ErrorIs(t, err, smithwilson.ErrNumerical)
}

func TestFit_InvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		obs   []smithwilson.Observation
		ufr   float64
		alpha float64
	}{
		{"empty", nil, refUFR, refAlpha},
		{"zero maturity", []smithwilson.Observation{{Maturity: 0, Price: 1}}, refUFR, refAlpha},
		{"negative maturity", []smithwilson.Observation{{Maturity: -1, Price: 1}}, refUFR, refAlpha},
		{"nan price", []smithwilson.Observation{{Maturity: 1, Price: math.NaN()}}, refUFR, refAlpha},
		{"inf maturity", []smithwilson.Observation{{Maturity: math.Inf(1), Price: 0.5}}, refUFR, refAlpha},
		{"ufr at -1", referenceObservations(), -1, refAlpha},
		{"ufr nan", referenceObservations(), math.NaN(), refAlpha},
		{"zero alpha", referenceObservations(), refUFR, 0},
		{"negative alpha", referenceObservations(), refUFR, -0.1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := smithwilson.Fit(tc.obs, tc.ufr, tc.alpha)
			require.ErrorIs(t, err, smithwilson.ErrInvalidInput)
			require.NotErrorIs(t, err, smithwilson.ErrNumerical)
		})
	}
}

func TestPriceAt_NegativeTenor(t *testing.T) {
	t.Parallel()

	_, err := smithwilson.PriceAt(referenceObservations(), refUFR, -0.5, refAlpha)
	require.ErrorIs(t, err, smithwilson.ErrInvalidInput)
}

func TestFit_DoesNotMutateObservations(t *testing.T) {
	t.Parallel()

	obs := flatObservations()
	before := append([]smithwilson.Observation(nil), obs...)

	c, err := smithwilson.Fit(obs, refUFR, refAlpha)
	require.NoError(t, err)
	require.Equal(t, before, obs)

	mats := c.Maturities()
	mats[0] = 99
	require.Equal(t, 1.0, c.Maturities()[0])
	require.Len(t, c.Weights(), len(obs))
	require.InDelta(t, math.Log(1+refUFR), c.LogUFR(), 1e-15)
	require.Equal(t, refAlpha, c.Alpha())
}

func TestCurve_Prices(t *testing.T) {
	t.Parallel()

	c, err := smithwilson.Fit(referenceObservations(), refUFR, refAlpha)
	require.NoError(t, err)

	got, err := c.Prices([]float64{3, 1, 20})
	require.NoError(t, err)
	require.InEpsilon(t, 0.85, got[0], 1e-9)
	require.InEpsilon(t, 0.95, got[1], 1e-9)
	require.InDelta(t, 0.3661675002008756, got[2], 1e-10)

	_, err = c.Prices([]float64{1, -1})
	require.ErrorIs(t, err, smithwilson.ErrInvalidInput)
}

func TestCurve_ZeroRate(t *testing.T) {
	t.Parallel()

	c, err := smithwilson.Fit(flatObservations(), refUFR, refAlpha)
	require.NoError(t, err)

	for _, tau := range []float64{1, 5, 10, 30} {
		z, err := c.ZeroRate(tau)
		require.NoError(t, err)
		require.InDelta(t, 0.03, z, 1e-9, "tau %g", tau)
	}

	_, err = c.ZeroRate(0)
	require.ErrorIs(t, err, smithwilson.ErrInvalidInput)
}

func TestCurve_ForwardRateOrdering(t *testing.T) {
	t.Parallel()

	c, err := smithwilson.Fit(flatObservations(), refUFR, refAlpha)
	require.NoError(t, err)

	f, err := c.ForwardRate(5, 10)
	require.NoError(t, err)
	require.InDelta(t, 0.03, f, 1e-9)

	_, err = c.ForwardRate(10, 10)
	require.ErrorIs(t, err, smithwilson.ErrInvalidInput)
}

func TestObservationsFromMatrix(t *testing.T) {
	t.Parallel()

	obs, err := smithwilson.ObservationsFromMatrix([][]float64{{1, 0.95}, {2, 0.90}, {3, 0.85}})
	require.NoError(t, err)
	require.Equal(t, referenceObservations(), obs)

	_, err = smithwilson.ObservationsFromMatrix(nil)
	require.ErrorIs(t, err, smithwilson.ErrInvalidInput)

	_, err = smithwilson.ObservationsFromMatrix([][]float64{{1, 0.95}, {2}})
	require.ErrorIs(t, err, smithwilson.ErrInvalidInput)
}
