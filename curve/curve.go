// Package curve builds discount curves from dated nodes and calibrates them to swap rates.
//
// A Curve interpolates discount factors between nodes. Node values are dual numbers,
// so any price computed from a curve carries its sensitivities to the nodes. A plain
// curve built from float discount factors simply carries none.
package curve

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/utils"
)

var (
	// ErrInvalidConfiguration is returned for an unknown interpolation or algorithm tag,
	// or a calibration basket whose swaps and rates do not line up.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidNodeSet is returned for missing, insufficient or unordered nodes.
	ErrInvalidNodeSet = errors.New("invalid node set")
)

// DayCount is the time axis used for interpolation and zero rates.
const DayCount = utils.Act365F

// Node is a (date, value) pair defining the curve's shape.
type Node struct {
	Date  time.Time
	Value dual.Dual
}

// Curve is an ordered set of discount-factor nodes plus an interpolation policy.
//
// The first node is the valuation date. Dates outside the node range take the
// nearest node's value.
type Curve struct {
	dates  []time.Time
	values []dual.Dual
	interp Interpolation
}

// New builds a curve. Node dates must be strictly increasing; linear and log-linear
// interpolation need at least two nodes.
func New(nodes []Node, interp Interpolation) (*Curve, error) {
	if err := interp.Validate(); err != nil {
		return nil, err
	}
	if err := validateNodes(nodes, interp); err != nil {
		return nil, err
	}
	c := &Curve{
		dates:  make([]time.Time, len(nodes)),
		values: make([]dual.Dual, len(nodes)),
		interp: interp,
	}
	for i, n := range nodes {
		c.dates[i] = n.Date
		c.values[i] = n.Value
	}
	return c, nil
}

// FromDFs creates a curve from plain discount factors keyed by date.
func FromDFs(dfs map[time.Time]float64, interp Interpolation) (*Curve, error) {
	dates := make([]time.Time, 0, len(dfs))
	for t := range dfs {
		dates = append(dates, t)
	}
	utils.SortDates(dates)

	nodes := make([]Node, len(dates))
	for i, t := range dates {
		nodes[i] = Node{Date: t, Value: dual.Const(dfs[t])}
	}
	return New(nodes, interp)
}

func validateNodes(nodes []Node, interp Interpolation) error {
	if len(nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidNodeSet)
	}
	if len(nodes) < 2 && interp != FlatForward {
		return fmt.Errorf("%w: %s interpolation needs at least 2 nodes, got %d", ErrInvalidNodeSet, interp, len(nodes))
	}
	for i := 1; i < len(nodes); i++ {
		if !nodes[i-1].Date.Before(nodes[i].Date) {
			return fmt.Errorf("%w: node %d (%s) is not after node %d (%s)", ErrInvalidNodeSet,
				i, nodes[i].Date.Format(utils.DateLayout), i-1, nodes[i-1].Date.Format(utils.DateLayout))
		}
	}
	return nil
}

// Discount returns the discount factor at t.
func (c *Curve) Discount(t time.Time) dual.Dual {
	n := len(c.dates)
	if !t.After(c.dates[0]) {
		return c.values[0]
	}
	if !t.Before(c.dates[n-1]) {
		return c.values[n-1]
	}

	// First node on or after t; 0 < i < n here.
	i := sort.Search(n, func(i int) bool {
		return !c.dates[i].Before(t)
	})
	if c.dates[i].Equal(t) {
		return c.values[i]
	}

	d1, d2 := c.dates[i-1], c.dates[i]
	w := utils.YearFraction(d1, t, DayCount) / utils.YearFraction(d1, d2, DayCount)
	return c.interp.interpolate(c.values[i-1], c.values[i], w)
}

// DF returns the real part of Discount(t).
func (c *Curve) DF(t time.Time) float64 {
	return c.Discount(t).Real()
}

// ZeroRate returns the continuously compounded zero rate to t, in percent.
// It is 0 on or before the valuation date.
func (c *Curve) ZeroRate(t time.Time) dual.Dual {
	yearFrac := utils.YearFraction(c.dates[0], t, DayCount)
	if yearFrac <= 0 {
		return dual.Const(0)
	}
	return c.Discount(t).Log().MulF(-100 / yearFrac)
}

// Nodes returns a copy of the node set.
func (c *Curve) Nodes() []Node {
	out := make([]Node, len(c.dates))
	for i := range c.dates {
		out[i] = Node{Date: c.dates[i], Value: c.values[i]}
	}
	return out
}

// BaseDate returns the valuation date (the first node).
func (c *Curve) BaseDate() time.Time {
	return c.dates[0]
}

// Interpolation returns the interpolation policy.
func (c *Curve) Interpolation() Interpolation {
	return c.interp
}
