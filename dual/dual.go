// Package dual implements forward-mode automatic differentiation with dual numbers.
//
// A Dual carries a real part and the first-order partial derivatives of that value
// with respect to a set of named variables. Every arithmetic operation returns a new
// Dual whose sensitivities follow the chain rule, so a curve node seeded with
// Variable("v3", df) yields d(price)/d(v3) alongside any price computed from it.
package dual

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDivisionByZero is returned when dividing by a Dual (or float) whose real part is exactly 0.
var ErrDivisionByZero = errors.New("dual: division by zero")

// Dual is an immutable value with first-order sensitivities.
//
// The zero value is the constant 0.
type Dual struct {
	real float64
	sens map[string]float64
}

// New returns a Dual with the given real part and a copy of sens.
func New(real float64, sens map[string]float64) Dual {
	d := Dual{real: real}
	if len(sens) > 0 {
		d.sens = make(map[string]float64, len(sens))
		for k, v := range sens {
			d.sens[k] = v
		}
	}
	return d
}

// Const returns a Dual without sensitivities.
func Const(x float64) Dual {
	return Dual{real: x}
}

// Variable returns a Dual seeded with a unit sensitivity to itself.
func Variable(id string, x float64) Dual {
	return Dual{real: x, sens: map[string]float64{id: 1}}
}

// Real returns the real part.
func (d Dual) Real() float64 {
	return d.real
}

// Sens returns the partial derivative with respect to id, 0 when id is absent.
func (d Dual) Sens(id string) float64 {
	return d.sens[id]
}

// Vars returns the variable identifiers carried by d, sorted.
func (d Dual) Vars() []string {
	ids := make([]string, 0, len(d.sens))
	for k := range d.sens {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Gradient returns the sensitivities of d ordered by ids.
func (d Dual) Gradient(ids []string) []float64 {
	g := make([]float64, len(ids))
	for i, id := range ids {
		g[i] = d.sens[id]
	}
	return g
}

// WithReal returns a Dual with the same sensitivities and a new real part.
func (d Dual) WithReal(x float64) Dual {
	return Dual{real: x, sens: d.sens}
}

// Less reports whether d.Real() < o.Real().
func (d Dual) Less(o Dual) bool {
	return d.real < o.real
}

// Equal compares real parts only.
func (d Dual) Equal(o Dual) bool {
	return d.real == o.real
}

// Compare returns -1, 0 or +1 by real part.
func (d Dual) Compare(o Dual) int {
	switch {
	case d.real < o.real:
		return -1
	case d.real > o.real:
		return 1
	default:
		return 0
	}
}

func (d Dual) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<Dual: %g, {", d.real)
	for i, k := range d.Vars() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %g", k, d.sens[k])
	}
	b.WriteString("}>")
	return b.String()
}

// combine builds the sensitivity map ca·a.sens + cb·b.sens over the union of keys.
func combine(a Dual, ca float64, b Dual, cb float64) map[string]float64 {
	if len(a.sens) == 0 && len(b.sens) == 0 {
		return nil
	}
	out := make(map[string]float64, len(a.sens)+len(b.sens))
	for k, v := range a.sens {
		out[k] = ca * v
	}
	for k, v := range b.sens {
		out[k] += cb * v
	}
	return out
}

// scaled returns c·d.sens.
func scaled(d Dual, c float64) map[string]float64 {
	if len(d.sens) == 0 {
		return nil
	}
	out := make(map[string]float64, len(d.sens))
	for k, v := range d.sens {
		out[k] = c * v
	}
	return out
}
