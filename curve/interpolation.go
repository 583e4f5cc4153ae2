package curve

import (
	"fmt"
	"strings"

	"github.com/meenmo/swapcurve/dual"
)

// Interpolation selects how discount factors are filled in between nodes.
type Interpolation string

const (
	// FlatForward holds the prior node's value until the next node.
	FlatForward Interpolation = "flat_forward"
	// Linear interpolates discount factors linearly in time.
	Linear Interpolation = "linear"
	// LogLinear interpolates log discount factors linearly in time (constant forward rates).
	LogLinear Interpolation = "log_linear"
)

// ParseInterpolation maps a tag such as "log_linear" to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	interp := Interpolation(strings.ToLower(strings.TrimSpace(s)))
	if err := interp.Validate(); err != nil {
		return "", err
	}
	return interp, nil
}

// Validate returns ErrInvalidConfiguration for unknown tags.
func (i Interpolation) Validate() error {
	switch i {
	case FlatForward, Linear, LogLinear:
		return nil
	default:
		return fmt.Errorf("%w: unknown interpolation %q", ErrInvalidConfiguration, string(i))
	}
}

// interpolate returns the value a fraction w of the way from v1 to v2.
func (i Interpolation) interpolate(v1, v2 dual.Dual, w float64) dual.Dual {
	switch i {
	case Linear:
		return v1.Add(v2.Sub(v1).MulF(w))
	case LogLinear:
		l1 := v1.Log()
		return l1.Add(v2.Log().Sub(l1).MulF(w)).Exp()
	default:
		return v1
	}
}
