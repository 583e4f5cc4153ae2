// Package swap defines a single-curve fixed-for-floating interest rate swap and prices it
// against any DiscountCurve.
//
// Rates are quoted in percent and the analytic delta is the PV of a one basis point
// change in the fixed rate, so with the default notional of 1e6 a two-year annual swap on
// a flat curve has an analytic delta of 200.
package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/swapcurve/calendar"
	"github.com/meenmo/swapcurve/utils"
)

// Params defines the economic terms of a swap.
type Params struct {
	EffectiveDate        time.Time
	TenorMonths          int
	FixedFrequencyMonths int
	FloatFrequencyMonths int

	// FixedRate in percent. Nil prices the swap at its par rate.
	FixedRate *float64

	// Notional defaults to DefaultNotional when zero.
	Notional float64

	// Calendar applies Modified Following to period end dates. calendar.None leaves them unadjusted.
	Calendar calendar.CalendarID
}

// Swap is an immutable fixed-for-floating swap with its leg schedules derived at construction.
type Swap struct {
	effective     time.Time
	maturity      time.Time
	tenorMonths   int
	fixedFreq     int
	floatFreq     int
	fixedRate     float64
	hasFixedRate  bool
	notional      float64
	fixedSchedule []Period
	floatSchedule []Period
}

// RatePtr is a convenience for setting Params.FixedRate.
func RatePtr(r float64) *float64 {
	return &r
}

// New validates p and derives both leg schedules.
func New(p Params) (*Swap, error) {
	if p.EffectiveDate.IsZero() {
		return nil, fmt.Errorf("%w: effective date is required", ErrInvalidConfiguration)
	}
	if p.TenorMonths <= 0 {
		return nil, fmt.Errorf("%w: tenor must be positive, got %d months", ErrInvalidConfiguration, p.TenorMonths)
	}
	if p.FixedFrequencyMonths <= 0 {
		return nil, fmt.Errorf("%w: fixed frequency must be positive, got %d months", ErrInvalidConfiguration, p.FixedFrequencyMonths)
	}
	if p.FloatFrequencyMonths <= 0 {
		return nil, fmt.Errorf("%w: float frequency must be positive, got %d months", ErrInvalidConfiguration, p.FloatFrequencyMonths)
	}

	notional := p.Notional
	if notional == 0 {
		notional = DefaultNotional
	}

	s := &Swap{
		effective:   p.EffectiveDate,
		maturity:    calendar.Adjust(p.Calendar, utils.AddMonth(p.EffectiveDate, p.TenorMonths)),
		tenorMonths: p.TenorMonths,
		fixedFreq:   p.FixedFrequencyMonths,
		floatFreq:   p.FloatFrequencyMonths,
		notional:    notional,
	}
	if p.FixedRate != nil {
		s.fixedRate = *p.FixedRate
		s.hasFixedRate = true
	}
	s.fixedSchedule = buildSchedule(s.effective, s.tenorMonths, s.fixedFreq, p.Calendar)
	s.floatSchedule = buildSchedule(s.effective, s.tenorMonths, s.floatFreq, p.Calendar)
	return s, nil
}

// EffectiveDate returns the start of the swap.
func (s *Swap) EffectiveDate() time.Time {
	return s.effective
}

// Maturity returns the end of the swap.
func (s *Swap) Maturity() time.Time {
	return s.maturity
}

// TenorMonths returns the total tenor.
func (s *Swap) TenorMonths() int {
	return s.tenorMonths
}

// Notional returns the notional, after defaulting.
func (s *Swap) Notional() float64 {
	return s.notional
}

// FixedRate returns the fixed rate in percent and whether one was set.
func (s *Swap) FixedRate() (float64, bool) {
	return s.fixedRate, s.hasFixedRate
}

// FixedSchedule returns a copy of the fixed leg periods.
func (s *Swap) FixedSchedule() []Period {
	return append([]Period(nil), s.fixedSchedule...)
}

// FloatSchedule returns a copy of the float leg periods.
func (s *Swap) FloatSchedule() []Period {
	return append([]Period(nil), s.floatSchedule...)
}

func (s *Swap) String() string {
	rate := "par"
	if s.hasFixedRate {
		rate = fmt.Sprintf("%g%%", s.fixedRate)
	}
	return fmt.Sprintf("Swap{%s %dM fixed %dM float %dM rate %s notional %g}",
		s.effective.Format(utils.DateLayout), s.tenorMonths, s.fixedFreq, s.floatFreq, rate, s.notional)
}
