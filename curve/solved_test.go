package curve_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/meenmo/swapcurve/config"
	"github.com/meenmo/swapcurve/curve"
	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/swap"
)

// marketRates returns a fresh basket of annual swaps from 2022-01-01 and their par rates.
func marketRates(t *testing.T) ([]curve.Instrument, []float64) {
	t.Helper()
	rates := []float64{1.000, 1.200, 1.300, 1.350}
	swaps := make([]curve.Instrument, len(rates))
	for i := range rates {
		sw, err := swap.New(swap.Params{
			EffectiveDate:        date(2022, 1, 1),
			TenorMonths:          12 * (i + 1),
			FixedFrequencyMonths: 12,
			FloatFrequencyMonths: 12,
		})
		if err != nil {
			t.Fatalf("swap.New error: %v", err)
		}
		swaps[i] = sw
	}
	return swaps, rates
}

// flatNodes returns nodes at the given dates, all starting at a discount factor of 1.
func flatNodes(dates ...time.Time) []curve.Node {
	nodes := make([]curve.Node, len(dates))
	for i, d := range dates {
		nodes[i] = curve.Node{Date: d, Value: dual.Const(1)}
	}
	return nodes
}

func yearlyNodes() []curve.Node {
	return flatNodes(date(2022, 1, 1), date(2023, 1, 1), date(2024, 1, 1), date(2025, 1, 1), date(2026, 1, 1))
}

func newSolved(t *testing.T, nodes []curve.Node) *curve.SolvedCurve {
	t.Helper()
	swaps, rates := marketRates(t)
	sc, err := curve.NewSolved(curve.SolvedParams{
		Nodes:         nodes,
		Interpolation: curve.LogLinear,
		Swaps:         swaps,
		ObjRates:      rates,
		Algorithm:     "levenberg_marquardt",
	})
	if err != nil {
		t.Fatalf("NewSolved error: %v", err)
	}
	return sc
}

func TestSolvedCurveReprice(t *testing.T) {
	t.Parallel()

	sc := newSolved(t, yearlyNodes())
	status, err := sc.Iterate()
	if err != nil {
		t.Fatalf("Iterate error: %v", err)
	}
	if !strings.Contains(status, "tolerance reached") {
		t.Fatalf("unexpected status: %q", status)
	}
	if strings.Contains(status, "not repriced") {
		t.Fatalf("exact basket reported as best fit: %q", status)
	}
	if sc.State() != curve.StateConverged {
		t.Fatalf("state = %s", sc.State())
	}

	objRates := sc.ObjRates()
	for i, sw := range sc.Swaps() {
		rate, err := sw.Rate(sc)
		if err != nil {
			t.Fatalf("Rate error: %v", err)
		}
		if math.Abs(rate.Real()-objRates[i]) >= 1e-6 {
			t.Fatalf("swap %d repriced to %.12f, want %.12f", i, rate.Real(), objRates[i])
		}
	}
	if sc.DF(date(2022, 1, 1)) != 1 {
		t.Fatalf("base node moved: %.12f", sc.DF(date(2022, 1, 1)))
	}
	// Discount factors decrease with positive rates.
	nodes := sc.Nodes()
	for i := 1; i < len(nodes); i++ {
		if !nodes[i].Value.Less(nodes[i-1].Value) {
			t.Fatalf("node %d DF %.12f not below node %d", i, nodes[i].Value.Real(), i-1)
		}
	}
}

func TestSolvedCurveOverspecified(t *testing.T) {
	t.Parallel()

	sc := newSolved(t, flatNodes(date(2022, 1, 1), date(2024, 1, 1), date(2026, 1, 1)))
	status, err := sc.Iterate()
	if err != nil {
		t.Fatalf("Iterate error: %v", err)
	}
	if !strings.Contains(status, "tolerance reached") {
		t.Fatalf("status missing termination reason: %q", status)
	}
	if !strings.Contains(status, "7 iterations") {
		t.Fatalf("status missing iteration count: %q", status)
	}
	if sc.F().Real() <= 1e-3 {
		t.Fatalf("overspecified basket should not fit exactly, F = %.12f", sc.F().Real())
	}
	if sc.Iterations() != 7 || sc.State() != curve.StateConverged {
		t.Fatalf("iterations=%d state=%s", sc.Iterations(), sc.State())
	}
	if len(sc.History()) != 8 {
		t.Fatalf("expected 8 objective evaluations, got %d", len(sc.History()))
	}
}

func TestSolvedNodesCarrySelfSensitivity(t *testing.T) {
	t.Parallel()

	sc := newSolved(t, yearlyNodes())
	if _, err := sc.Iterate(); err != nil {
		t.Fatalf("Iterate error: %v", err)
	}
	ids := sc.VarIDs()
	for i, n := range sc.Nodes() {
		vars := n.Value.Vars()
		if len(vars) != 1 || vars[0] != ids[i] || n.Value.Sens(ids[i]) != 1 {
			t.Fatalf("node %d sensitivities changed: %s", i, n.Value)
		}
	}
}

func TestJacobianMatchesFiniteDifferences(t *testing.T) {
	t.Parallel()

	base := []float64{1, 0.99, 0.975, 0.96, 0.945}
	nodesAt := func(dfs []float64) []curve.Node {
		nodes := yearlyNodes()
		for i := range nodes {
			nodes[i].Value = dual.Const(dfs[i])
		}
		return nodes
	}

	swaps, _ := marketRates(t)
	sc := newSolved(t, nodesAt(base))
	rate, err := swaps[2].Rate(sc)
	if err != nil {
		t.Fatalf("Rate error: %v", err)
	}

	const h = 1e-7
	for j := 1; j < len(base); j++ {
		up := append([]float64(nil), base...)
		dn := append([]float64(nil), base...)
		up[j] += h
		dn[j] -= h
		cu, _ := curve.New(nodesAt(up), curve.LogLinear)
		cd, _ := curve.New(nodesAt(dn), curve.LogLinear)
		ru, _ := swaps[2].Rate(cu)
		rd, _ := swaps[2].Rate(cd)
		fd := (ru.Real() - rd.Real()) / (2 * h)
		if got := rate.Sens(sc.VarIDs()[j]); math.Abs(got-fd) > 1e-5*math.Max(1, math.Abs(fd)) {
			t.Fatalf("d rate / d v%d: AD %.10f vs FD %.10f", j, got, fd)
		}
	}
}

func TestSingularSystem(t *testing.T) {
	t.Parallel()

	oneYear, _ := marketRates(t)
	allSwaps, allRates := marketRates(t)

	// In each case the 2030 node influences no cashflow of the basket.
	cases := []struct {
		name  string
		nodes []curve.Node
		swaps []curve.Instrument
		rates []float64
	}{
		{"single swap", flatNodes(date(2022, 1, 1), date(2023, 1, 1), date(2030, 1, 1)), oneYear[:1], []float64{1.0}},
		{"node past basket", flatNodes(date(2022, 1, 1), date(2023, 1, 1), date(2024, 1, 1), date(2025, 1, 1), date(2026, 1, 1), date(2030, 1, 1)), allSwaps, allRates},
	}
	for _, tc := range cases {
		sc, err := curve.NewSolved(curve.SolvedParams{
			Nodes:         tc.nodes,
			Interpolation: curve.LogLinear,
			Swaps:         tc.swaps,
			ObjRates:      tc.rates,
			Algorithm:     curve.AlgorithmLevenbergMarquardt,
		})
		if err != nil {
			t.Fatalf("%s: NewSolved error: %v", tc.name, err)
		}

		status, err := sc.Iterate()
		if !errors.Is(err, curve.ErrSingularSystem) {
			t.Fatalf("%s: expected ErrSingularSystem, got %v (status %q)", tc.name, err, status)
		}
		if status != "" || sc.State() == curve.StateConverged {
			t.Fatalf("%s: failed solve reported as %q, state %s", tc.name, status, sc.State())
		}
		if sc.Iterations() != 0 {
			t.Fatalf("%s: iterations = %d", tc.name, sc.Iterations())
		}
		for _, n := range sc.Nodes() {
			if n.Value.Real() != 1 {
				t.Fatalf("%s: nodes moved after failed solve: %s", tc.name, n.Value)
			}
		}
	}
}

func TestMaxIterationsIsNotAnError(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultSolver
	cfg.MaxIterations = 3
	swaps, rates := marketRates(t)
	sc, err := curve.NewSolved(curve.SolvedParams{
		Nodes:         yearlyNodes(),
		Interpolation: curve.LogLinear,
		Swaps:         swaps,
		ObjRates:      rates,
		Algorithm:     curve.AlgorithmLevenbergMarquardt,
		Config:        &cfg,
	})
	if err != nil {
		t.Fatalf("NewSolved error: %v", err)
	}

	status, err := sc.Iterate()
	if err != nil {
		t.Fatalf("Iterate error: %v", err)
	}
	if sc.State() != curve.StateMaxIterations {
		t.Fatalf("state = %s", sc.State())
	}
	if !strings.Contains(status, "max iterations reached") || !strings.Contains(status, "3 iterations") {
		t.Fatalf("unexpected status: %q", status)
	}
	if strings.Contains(status, "tolerance reached") {
		t.Fatalf("cap status must not claim convergence: %q", status)
	}
	if f := sc.F().Real(); math.IsInf(f, 0) || f <= 0 {
		t.Fatalf("objective not recorded: %v", f)
	}
}

func TestInitialState(t *testing.T) {
	t.Parallel()

	sc := newSolved(t, yearlyNodes())
	if sc.State() != curve.StateInitialized || sc.Iterations() != 0 {
		t.Fatalf("state=%s iterations=%d", sc.State(), sc.Iterations())
	}
	if !math.IsInf(sc.F().Real(), 1) {
		t.Fatalf("initial F = %v, want +Inf", sc.F().Real())
	}
	if sc.Lambda() != config.DefaultSolver.InitialDamping {
		t.Fatalf("initial lambda = %v", sc.Lambda())
	}
	if sc.Algorithm() != curve.AlgorithmLevenbergMarquardt {
		t.Fatalf("algorithm = %q", sc.Algorithm())
	}
	if got := curve.StateMaxIterations.String(); got != "max_iterations_reached" {
		t.Fatalf("State.String() = %q", got)
	}
}

func TestNewSolvedValidation(t *testing.T) {
	t.Parallel()

	swaps, rates := marketRates(t)
	badCfg := config.DefaultSolver
	badCfg.MaxIterations = 0

	cases := []struct {
		name   string
		params curve.SolvedParams
		want   error
	}{
		{"algorithm", curve.SolvedParams{Nodes: yearlyNodes(), Interpolation: curve.LogLinear, Swaps: swaps, ObjRates: rates, Algorithm: "gauss_newton"}, curve.ErrInvalidConfiguration},
		{"interpolation", curve.SolvedParams{Nodes: yearlyNodes(), Interpolation: "spline", Swaps: swaps, ObjRates: rates, Algorithm: curve.AlgorithmLevenbergMarquardt}, curve.ErrInvalidConfiguration},
		{"length mismatch", curve.SolvedParams{Nodes: yearlyNodes(), Interpolation: curve.LogLinear, Swaps: swaps, ObjRates: rates[:3], Algorithm: curve.AlgorithmLevenbergMarquardt}, curve.ErrInvalidConfiguration},
		{"no swaps", curve.SolvedParams{Nodes: yearlyNodes(), Interpolation: curve.LogLinear, Algorithm: curve.AlgorithmLevenbergMarquardt}, curve.ErrInvalidConfiguration},
		{"nil swap", curve.SolvedParams{Nodes: yearlyNodes(), Interpolation: curve.LogLinear, Swaps: []curve.Instrument{nil}, ObjRates: []float64{1}, Algorithm: curve.AlgorithmLevenbergMarquardt}, curve.ErrInvalidConfiguration},
		{"solver config", curve.SolvedParams{Nodes: yearlyNodes(), Interpolation: curve.LogLinear, Swaps: swaps, ObjRates: rates, Algorithm: curve.AlgorithmLevenbergMarquardt, Config: &badCfg}, curve.ErrInvalidConfiguration},
		{"single node", curve.SolvedParams{Nodes: flatNodes(date(2022, 1, 1)), Interpolation: curve.FlatForward, Swaps: swaps, ObjRates: rates, Algorithm: curve.AlgorithmLevenbergMarquardt}, curve.ErrInvalidNodeSet},
		{"unordered", curve.SolvedParams{Nodes: flatNodes(date(2022, 1, 1), date(2024, 1, 1), date(2023, 1, 1)), Interpolation: curve.LogLinear, Swaps: swaps, ObjRates: rates, Algorithm: curve.AlgorithmLevenbergMarquardt}, curve.ErrInvalidNodeSet},
	}
	for _, tc := range cases {
		if _, err := curve.NewSolved(tc.params); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
