// Package report renders solvecurve results as JSON with fixed decimal precision.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"

	"github.com/meenmo/swapcurve/curve"
	"github.com/meenmo/swapcurve/utils"
)

// Decimal places per quantity.
const (
	DFPlaces     = 12
	RatePlaces   = 10
	AmountPlaces = 6
)

// Round converts x to a decimal rounded half away from zero. Non-finite values render as 0.
func Round(x float64, places int32) decimal.Decimal {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x).Round(places)
}

// Node is one calibrated or input curve node.
type Node struct {
	Date     string          `json:"date"`
	DF       decimal.Decimal `json:"df"`
	ZeroRate decimal.Decimal `json:"zero_rate"`
}

// CalibratedSwap compares a basket swap's repriced rate with its target.
type CalibratedSwap struct {
	Effective   string          `json:"effective"`
	Maturity    string          `json:"maturity"`
	TenorMonths int             `json:"tenor_months"`
	Objective   decimal.Decimal `json:"objective_rate"`
	Rate        decimal.Decimal `json:"rate"`
	Residual    decimal.Decimal `json:"residual"`
}

// Solve is the output of a calibration.
type Solve struct {
	Status     string           `json:"status"`
	State      string           `json:"state"`
	Iterations int              `json:"iterations"`
	Objective  float64          `json:"objective"`
	Nodes      []Node           `json:"nodes"`
	Swaps      []CalibratedSwap `json:"swaps"`
}

// NodeDelta is the sensitivity of a price to one node discount factor.
type NodeDelta struct {
	Date  string          `json:"date"`
	Delta decimal.Decimal `json:"delta"`
}

// PricedSwap is the valuation of one swap.
type PricedSwap struct {
	Effective     string           `json:"effective"`
	Maturity      string           `json:"maturity"`
	TenorMonths   int              `json:"tenor_months"`
	Notional      decimal.Decimal  `json:"notional"`
	FixedRate     *decimal.Decimal `json:"fixed_rate,omitempty"`
	AnalyticDelta decimal.Decimal  `json:"analytic_delta"`
	Rate          decimal.Decimal  `json:"rate"`
	NPV           decimal.Decimal  `json:"npv"`
	NodeDeltas    []NodeDelta      `json:"node_deltas"`
}

// Price is the output of a pricing run.
type Price struct {
	Swaps []PricedSwap `json:"swaps"`
}

// Error is written in place of a result when a command fails.
type Error struct {
	Error string `json:"error"`
}

// Nodes renders the nodes of c with their zero rates.
func Nodes(c *curve.Curve) []Node {
	nodes := c.Nodes()
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Node{
			Date:     n.Date.Format(utils.DateLayout),
			DF:       Round(n.Value.Real(), DFPlaces),
			ZeroRate: Round(c.ZeroRate(n.Date).Real(), RatePlaces),
		}
	}
	return out
}

// Write encodes v as a single JSON line.
func Write(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteError writes an Error report and returns the exit code 1.
func WriteError(w io.Writer, msg string) int {
	_ = Write(w, Error{Error: msg})
	return 1
}
