package main

import (
	"fmt"
	"os"

	"github.com/meenmo/swcurve/bond"
	"github.com/meenmo/swcurve/smithwilson"
)

func main() {
	observations := []smithwilson.Observation{
		{Maturity: 1, Price: 0.95},
		{Maturity: 2, Price: 0.90},
		{Maturity: 3, Price: 0.85},
	}
	const (
		ufr   = 0.042
		alpha = 0.1
		tau   = 20.0
	)

	price, err := smithwilson.PriceAt(observations, ufr, tau, alpha)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Bond price is: %.16f\n", price)

	curve, err := smithwilson.BuildCurveParallel(observations, ufr, alpha, 12*30)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, years := range []int{1, 5, 10, 30} {
		fmt.Printf("P(%2dY) = %.10f\n", years, curve[12*years-1])
	}

	fitted, err := smithwilson.Fit(observations, ufr, alpha)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pv, res, err := bond.YieldOnCurve(bond.FixedCouponCashflows(4, 10, 1), fitted)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("10Y 4%% bullet: PV %.6f, yield %.6f%%\n", pv, res.Yield)
}
