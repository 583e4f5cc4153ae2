package curve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/logger"
)

// jacobian reads J[i][j] = d r_i / d node_{j+1} off the residual sensitivities.
func (s *SolvedCurve) jacobian(r []dual.Dual) (*mat.Dense, *mat.VecDense) {
	free := s.ids[1:]
	jac := mat.NewDense(len(r), len(free), nil)
	res := mat.NewVecDense(len(r), nil)
	for i, ri := range r {
		res.SetVec(i, ri.Real())
		jac.SetRow(i, ri.Gradient(free))
	}
	return jac, res
}

// step solves (JᵀJ + λ·diag(JᵀJ)) Δ = −Jᵀr for the free node update.
func (s *SolvedCurve) step(r []dual.Dual) ([]float64, error) {
	jac, res := s.jacobian(r)
	_, n := jac.Dims()

	var a mat.Dense
	a.Mul(jac.T(), jac)
	for k := 0; k < n; k++ {
		// Damping scales the diagonal, so a node no swap depends on stays a zero column.
		if a.At(k, k) == 0 {
			return nil, fmt.Errorf("%w: no swap depends on node %s", ErrSingularSystem, s.ids[k+1])
		}
		a.Set(k, k, a.At(k, k)*(1+s.lambda))
	}

	var b mat.VecDense
	b.MulVec(jac.T(), res)
	b.ScaleVec(-1, &b)

	var delta mat.VecDense
	if err := delta.SolveVec(&a, &b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
		}
		logger.L().Warn("ill-conditioned normal equations", "algorithm", s.algorithm, "condition", float64(cond), "lambda", s.lambda)
	}

	out := make([]float64, n)
	for k := range out {
		out[k] = delta.AtVec(k)
	}
	if !finite(out) {
		return nil, fmt.Errorf("%w: non-finite node update at lambda %g", ErrSingularSystem, s.lambda)
	}
	return out, nil
}

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
