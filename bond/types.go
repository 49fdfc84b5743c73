package bond

// Cashflow is a single cash payment of a bond, timed in years from valuation.
//
// Amounts are per 100 notional.
type Cashflow struct {
	Time      float64
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// DiscountCurve returns the discount factor at a tenor in years.
// *smithwilson.Curve satisfies it.
type DiscountCurve interface {
	PriceAt(tau float64) (float64, error)
}

// FixedCouponCashflows builds the cash flows of a bullet bond paying
// couponRate (percent per year) in frequency instalments until maturity.
// The first coupon falls one period after valuation.
func FixedCouponCashflows(couponRate, maturity float64, frequency int) []Cashflow {
	if frequency <= 0 || maturity <= 0 {
		return nil
	}
	period := 1.0 / float64(frequency)
	n := int(maturity*float64(frequency) + 0.5)
	if n < 1 {
		n = 1
	}
	cfs := make([]Cashflow, n)
	for i := range cfs {
		cfs[i] = Cashflow{
			Time:   float64(i+1) * period,
			Coupon: couponRate / float64(frequency),
		}
	}
	cfs[n-1].Time = maturity
	cfs[n-1].Principal = 100
	return cfs
}
