package swap

import (
	"fmt"
	"reflect"

	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/utils"
)

// isNil reports whether c is nil or an interface holding a nil pointer.
func isNil(c DiscountCurve) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// AnalyticDelta returns the PV of a one basis point move in the fixed rate:
// the sum over fixed periods of notional/10000 × accrual × DF(period end).
func (s *Swap) AnalyticDelta(c DiscountCurve) dual.Dual {
	total := dual.Const(0)
	for _, p := range s.fixedSchedule {
		total = total.Add(c.Discount(p.EndDate).MulF(p.Accrual * s.notional / 10000))
	}
	return total
}

// floatLegPV is notional × (DF(effective) − DF(maturity)); the single-curve float leg
// reprices to par between its start and end.
func (s *Swap) floatLegPV(c DiscountCurve) dual.Dual {
	return c.Discount(s.effective).Sub(c.Discount(s.maturity)).MulF(s.notional)
}

// Rate returns the par fixed rate in percent.
func (s *Swap) Rate(c DiscountCurve) (dual.Dual, error) {
	if isNil(c) {
		return dual.Dual{}, ErrNilCurve
	}
	num := c.Discount(s.effective).Sub(c.Discount(s.maturity)).MulF(s.notional / 100)
	rate, err := num.Div(s.AnalyticDelta(c))
	if err != nil {
		return dual.Dual{}, fmt.Errorf("par rate of %s: %w", s, err)
	}
	return rate, nil
}

// NPV returns float leg PV minus fixed leg PV. It is positive when the fixed rate is
// below the par rate. Without a fixed rate the swap is valued at par.
func (s *Swap) NPV(c DiscountCurve) (dual.Dual, error) {
	fixed, float, err := s.PVByLeg(c)
	if err != nil {
		return dual.Dual{}, err
	}
	return float.Sub(fixed), nil
}

// PVByLeg returns the fixed leg and float leg present values.
func (s *Swap) PVByLeg(c DiscountCurve) (dual.Dual, dual.Dual, error) {
	if isNil(c) {
		return dual.Dual{}, dual.Dual{}, ErrNilCurve
	}
	float := s.floatLegPV(c)
	if !s.hasFixedRate {
		// Par swap: the fixed leg prices to the float leg by construction.
		return float, float, nil
	}
	fixed := s.AnalyticDelta(c).MulF(s.fixedRate * 100)
	return fixed, float, nil
}

// Cashflows returns the projected float cashflows followed by the fixed cashflows.
// Float rates are simple forwards implied by the curve over each period. A swap without
// a fixed rate uses its par rate for the fixed coupons.
func (s *Swap) Cashflows(c DiscountCurve) ([]Cashflow, error) {
	if isNil(c) {
		return nil, ErrNilCurve
	}
	fixedRate := dual.Const(s.fixedRate)
	if !s.hasFixedRate {
		par, err := s.Rate(c)
		if err != nil {
			return nil, err
		}
		fixedRate = par
	}

	out := make([]Cashflow, 0, len(s.floatSchedule)+len(s.fixedSchedule))
	for _, p := range s.floatSchedule {
		start, end := c.Discount(p.StartDate), c.Discount(p.EndDate)
		ratio, err := start.Div(end)
		if err != nil {
			return nil, fmt.Errorf("forward for %s: %w", p.EndDate.Format(utils.DateLayout), err)
		}
		fwd, err := ratio.SubF(1).DivF(p.Accrual / 100)
		if err != nil {
			return nil, fmt.Errorf("forward for %s: %w", p.EndDate.Format(utils.DateLayout), err)
		}
		out = append(out, Cashflow{
			Period:   p,
			Rate:     fwd,
			Amount:   fwd.MulF(p.Accrual * s.notional / 100),
			Discount: end,
		})
	}
	for _, p := range s.fixedSchedule {
		out = append(out, Cashflow{
			Period:   p,
			Rate:     fixedRate,
			Amount:   fixedRate.MulF(p.Accrual * s.notional / 100),
			Discount: c.Discount(p.EndDate),
		})
	}
	return out, nil
}
