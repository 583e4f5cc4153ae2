// Package config holds solver parameters for curve calibration and loads them from files.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidSolver is returned by Solver.Validate.
var ErrInvalidSolver = errors.New("invalid solver config")

// Solver holds Levenberg-Marquardt calibration parameters.
type Solver struct {
	// MaxIterations caps the number of passes of SolvedCurve.Iterate.
	MaxIterations int `mapstructure:"max_iterations"`

	// Tolerance stops the iteration once an accepted step improves the
	// objective (sum of squared rate residuals) by less than this amount.
	Tolerance float64 `mapstructure:"tolerance"`

	// FitTolerance is the objective below which the basket counts as repriced exactly.
	// Above it the status reports a best-fit (over- or under-specified) solution.
	FitTolerance float64 `mapstructure:"fit_tolerance"`

	// InitialDamping is the starting lambda.
	InitialDamping float64 `mapstructure:"initial_damping"`

	// DampingIncrease multiplies lambda after a rejected step.
	DampingIncrease float64 `mapstructure:"damping_increase"`

	// DampingDecrease multiplies lambda after an accepted step.
	DampingDecrease float64 `mapstructure:"damping_decrease"`
}

// DefaultSolver provides production-ready default values.
var DefaultSolver = Solver{
	MaxIterations:   2000,
	Tolerance:       1e-10,
	FitTolerance:    1e-12,
	InitialDamping:  1000,
	DampingIncrease: 10,
	DampingDecrease: 0.1,
}

// solver is the active configuration. Defaults to DefaultSolver.
var solver = DefaultSolver

// SetSolver replaces the active configuration.
func SetSolver(s Solver) {
	solver = s
}

// GetSolver returns the active configuration.
func GetSolver() Solver {
	return solver
}

// Validate checks that every parameter is usable.
func (s Solver) Validate() error {
	switch {
	case s.MaxIterations <= 0:
		return fmt.Errorf("%w: max_iterations must be positive, got %d", ErrInvalidSolver, s.MaxIterations)
	case s.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidSolver, s.Tolerance)
	case s.FitTolerance < 0:
		return fmt.Errorf("%w: fit_tolerance must not be negative, got %g", ErrInvalidSolver, s.FitTolerance)
	case s.InitialDamping < 0:
		return fmt.Errorf("%w: initial_damping must not be negative, got %g", ErrInvalidSolver, s.InitialDamping)
	case s.DampingIncrease <= 1:
		return fmt.Errorf("%w: damping_increase must exceed 1, got %g", ErrInvalidSolver, s.DampingIncrease)
	case s.DampingDecrease <= 0 || s.DampingDecrease >= 1:
		return fmt.Errorf("%w: damping_decrease must lie in (0, 1), got %g", ErrInvalidSolver, s.DampingDecrease)
	}
	return nil
}
