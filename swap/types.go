package swap

import (
	"errors"
	"time"

	"github.com/meenmo/swapcurve/dual"
)

var (
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")

	// ErrInvalidConfiguration is returned by New for unusable swap terms.
	ErrInvalidConfiguration = errors.New("invalid swap configuration")
)

// DefaultNotional applies when Params.Notional is 0.
const DefaultNotional = 1e6

// DiscountCurve provides discount factors for valuation.
//
// Both curve.Curve and curve.SolvedCurve satisfy it; against a SolvedCurve every
// discount factor carries node sensitivities, and so does every price.
type DiscountCurve interface {
	Discount(t time.Time) dual.Dual
}

// Period is one accrual period of a leg.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
	// Accrual is the ACT/365F year fraction of the period.
	Accrual float64
}

// Cashflow is a projected payment at the end of a period, before discounting.
type Cashflow struct {
	Period
	// Rate is the coupon or projected forward rate in percent.
	Rate     dual.Dual
	Amount   dual.Dual
	Discount dual.Dual
}
