package curve

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/meenmo/swapcurve/config"
	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/logger"
	"github.com/meenmo/swapcurve/swap"
)

// ErrSingularSystem is returned by Iterate when the damped normal equations cannot be solved.
var ErrSingularSystem = errors.New("singular system")

// AlgorithmLevenbergMarquardt is the only supported calibration algorithm.
const AlgorithmLevenbergMarquardt = "levenberg_marquardt"

// Instrument is a calibration target priced off the curve being solved.
type Instrument interface {
	Rate(c swap.DiscountCurve) (dual.Dual, error)
}

// State is the calibration lifecycle of a SolvedCurve.
type State int

const (
	StateInitialized State = iota
	StateIterating
	StateConverged
	StateMaxIterations
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterations:
		return "max_iterations_reached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SolvedParams configures NewSolved.
type SolvedParams struct {
	// Nodes supply the dates and initial guesses. Sensitivities are reseeded.
	Nodes         []Node
	Interpolation Interpolation
	// Swaps and ObjRates are index-aligned: Swaps[i] should reprice to ObjRates[i] percent.
	Swaps     []Instrument
	ObjRates  []float64
	Algorithm string
	// Config overrides config.GetSolver().
	Config *config.Solver
}

// SolvedCurve is a Curve whose node values are calibrated so that a basket of swaps
// reprices to target rates.
//
// Node i holds dual.Variable("v<i>", df), so every rate priced off the curve carries
// d(rate)/d(node) for all nodes, and those sensitivities form the Jacobian. The first
// node is the valuation date and is not solved for.
type SolvedCurve struct {
	*Curve
	ids       []string
	swaps     []Instrument
	objRates  []float64
	algorithm string
	cfg       config.Solver

	state      State
	f          dual.Dual
	residuals  []dual.Dual
	iterations int
	lambda     float64
	history    []float64
}

// ParseAlgorithm normalizes an algorithm tag.
func ParseAlgorithm(s string) (string, error) {
	algo := strings.ToLower(strings.TrimSpace(s))
	if algo != AlgorithmLevenbergMarquardt {
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfiguration, s)
	}
	return algo, nil
}

// NewSolved validates p and seeds the node sensitivities.
func NewSolved(p SolvedParams) (*SolvedCurve, error) {
	algo, err := ParseAlgorithm(p.Algorithm)
	if err != nil {
		return nil, err
	}
	if len(p.Swaps) == 0 {
		return nil, fmt.Errorf("%w: no swaps to calibrate to", ErrInvalidConfiguration)
	}
	if len(p.Swaps) != len(p.ObjRates) {
		return nil, fmt.Errorf("%w: %d swaps but %d objective rates", ErrInvalidConfiguration, len(p.Swaps), len(p.ObjRates))
	}
	for i, sw := range p.Swaps {
		if sw == nil {
			return nil, fmt.Errorf("%w: swap %d is nil", ErrInvalidConfiguration, i)
		}
	}
	if len(p.Nodes) < 2 {
		return nil, fmt.Errorf("%w: calibration needs the base node and at least one free node, got %d", ErrInvalidNodeSet, len(p.Nodes))
	}

	cfg := config.GetSolver()
	if p.Config != nil {
		cfg = *p.Config
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	ids := make([]string, len(p.Nodes))
	seeded := make([]Node, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = fmt.Sprintf("v%d", i)
		seeded[i] = Node{Date: n.Date, Value: dual.Variable(ids[i], n.Value.Real())}
	}
	c, err := New(seeded, p.Interpolation)
	if err != nil {
		return nil, err
	}

	return &SolvedCurve{
		Curve:     c,
		ids:       ids,
		swaps:     append([]Instrument(nil), p.Swaps...),
		objRates:  append([]float64(nil), p.ObjRates...),
		algorithm: algo,
		cfg:       cfg,
		state:     StateInitialized,
		f:         dual.Const(math.Inf(1)),
		lambda:    cfg.InitialDamping,
	}, nil
}

// snapshot is the last accepted point of the iteration.
type snapshot struct {
	reals     []float64
	residuals []dual.Dual
	f         dual.Dual
}

// Iterate runs Levenberg-Marquardt until an accepted step improves the objective by
// less than the configured tolerance, or until the iteration cap. Both outcomes are
// reported in the returned status; an error is returned only when a step cannot be
// solved, leaving the nodes and iteration count as they were for inspection.
func (s *SolvedCurve) Iterate() (string, error) {
	log := logger.L().With("algorithm", s.algorithm)
	s.state = StateIterating
	s.lambda = s.cfg.InitialDamping
	s.history = s.history[:0]

	accepted := math.Inf(1)
	var last *snapshot
	for i := 0; i < s.cfg.MaxIterations; i++ {
		s.iterations = i
		r, f, err := s.metrics()
		if err != nil {
			return "", err
		}
		s.history = append(s.history, f.Real())

		if f.Real() <= accepted {
			improvement := accepted - f.Real()
			log.Debug("step accepted", "iteration", i, "objective", f.Real(), "lambda", s.lambda)
			s.residuals, s.f = r, f
			if improvement < s.cfg.Tolerance {
				s.state = StateConverged
				return s.status(), nil
			}
			accepted = f.Real()
			last = s.snapshot(r, f)
			s.lambda *= s.cfg.DampingDecrease
		} else {
			if last == nil {
				return "", fmt.Errorf("%w: objective %g is not finite at the initial nodes", ErrInvalidNodeSet, f.Real())
			}
			log.Debug("step rejected", "iteration", i, "objective", f.Real(), "lambda", s.lambda)
			s.lambda *= s.cfg.DampingIncrease
			s.restore(last)
			r = last.residuals
		}

		delta, err := s.step(r)
		if err != nil {
			return "", fmt.Errorf("iteration %d: %w", i, err)
		}
		s.apply(delta)
	}

	s.iterations = s.cfg.MaxIterations
	s.state = StateMaxIterations
	if last != nil {
		s.restore(last)
	}
	return s.status(), nil
}

// metrics reprices the basket: residuals r_i = rate_i − obj_i and F = Σ r_i².
func (s *SolvedCurve) metrics() ([]dual.Dual, dual.Dual, error) {
	r := make([]dual.Dual, len(s.swaps))
	f := dual.Const(0)
	for i, sw := range s.swaps {
		rate, err := sw.Rate(s)
		if err != nil {
			return nil, dual.Dual{}, fmt.Errorf("reprice swap %d: %w", i, err)
		}
		r[i] = rate.SubF(s.objRates[i])
		f = f.Add(r[i].Mul(r[i]))
	}
	return r, f, nil
}

func (s *SolvedCurve) snapshot(r []dual.Dual, f dual.Dual) *snapshot {
	reals := make([]float64, len(s.values))
	for i, v := range s.values {
		reals[i] = v.Real()
	}
	return &snapshot{reals: reals, residuals: r, f: f}
}

func (s *SolvedCurve) restore(snap *snapshot) {
	for i, x := range snap.reals {
		s.values[i] = s.values[i].WithReal(x)
	}
	s.residuals, s.f = snap.residuals, snap.f
}

// apply adds delta to the real parts of the free nodes; sensitivities stay as seeded.
func (s *SolvedCurve) apply(delta []float64) {
	for j, d := range delta {
		k := j + 1
		s.values[k] = s.values[k].WithReal(s.values[k].Real() + d)
	}
}

func (s *SolvedCurve) status() string {
	switch s.state {
	case StateConverged:
		msg := fmt.Sprintf("tolerance reached (%s) after %d iterations", s.algorithm, s.iterations)
		if s.f.Real() > s.cfg.FitTolerance {
			msg += fmt.Sprintf("; objective %.6e above fit tolerance %.1e, basket not repriced exactly", s.f.Real(), s.cfg.FitTolerance)
		}
		return msg
	case StateMaxIterations:
		return fmt.Sprintf("max iterations reached (%s) after %d iterations, tolerance not reached; objective %.6e",
			s.algorithm, s.iterations, s.f.Real())
	default:
		return s.state.String()
	}
}

// F returns the objective (sum of squared rate residuals) at the current nodes.
// It is +Inf before the first iteration.
func (s *SolvedCurve) F() dual.Dual {
	return s.f
}

// State returns the calibration state.
func (s *SolvedCurve) State() State {
	return s.state
}

// Iterations returns the iteration count of the last Iterate call.
func (s *SolvedCurve) Iterations() int {
	return s.iterations
}

// Lambda returns the current damping parameter.
func (s *SolvedCurve) Lambda() float64 {
	return s.lambda
}

// Algorithm returns the algorithm tag.
func (s *SolvedCurve) Algorithm() string {
	return s.algorithm
}

// Swaps returns the calibration basket.
func (s *SolvedCurve) Swaps() []Instrument {
	return append([]Instrument(nil), s.swaps...)
}

// ObjRates returns the target rates, index-aligned with Swaps.
func (s *SolvedCurve) ObjRates() []float64 {
	return append([]float64(nil), s.objRates...)
}

// Residuals returns rate − objective per swap at the current nodes.
func (s *SolvedCurve) Residuals() []dual.Dual {
	return append([]dual.Dual(nil), s.residuals...)
}

// History returns the objective evaluated at each iteration of the last Iterate call.
func (s *SolvedCurve) History() []float64 {
	return append([]float64(nil), s.history...)
}

// VarIDs returns the sensitivity identifier of each node, in node order.
func (s *SolvedCurve) VarIDs() []string {
	return append([]string(nil), s.ids...)
}
