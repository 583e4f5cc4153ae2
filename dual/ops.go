package dual

import "math"

// Add returns d + o.
func (d Dual) Add(o Dual) Dual {
	return Dual{real: d.real + o.real, sens: combine(d, 1, o, 1)}
}

// AddF returns d + x.
func (d Dual) AddF(x float64) Dual {
	return Dual{real: d.real + x, sens: d.sens}
}

// Sub returns d - o.
func (d Dual) Sub(o Dual) Dual {
	return Dual{real: d.real - o.real, sens: combine(d, 1, o, -1)}
}

// SubF returns d - x.
func (d Dual) SubF(x float64) Dual {
	return Dual{real: d.real - x, sens: d.sens}
}

// Mul returns d * o.
func (d Dual) Mul(o Dual) Dual {
	return Dual{real: d.real * o.real, sens: combine(d, o.real, o, d.real)}
}

// MulF returns d * x.
func (d Dual) MulF(x float64) Dual {
	return Dual{real: d.real * x, sens: scaled(d, x)}
}

// Div returns d / o, or ErrDivisionByZero when o.Real() is 0.
func (d Dual) Div(o Dual) (Dual, error) {
	if o.real == 0 {
		return Dual{}, ErrDivisionByZero
	}
	return Dual{
		real: d.real / o.real,
		sens: combine(d, 1/o.real, o, -d.real/(o.real*o.real)),
	}, nil
}

// DivF returns d / x, or ErrDivisionByZero when x is 0.
func (d Dual) DivF(x float64) (Dual, error) {
	if x == 0 {
		return Dual{}, ErrDivisionByZero
	}
	return Dual{real: d.real / x, sens: scaled(d, 1/x)}, nil
}

// Neg returns -d.
func (d Dual) Neg() Dual {
	return Dual{real: -d.real, sens: scaled(d, -1)}
}

// Inv returns 1 / d.
func (d Dual) Inv() (Dual, error) {
	return Const(1).Div(d)
}

// Exp returns e^d.
func (d Dual) Exp() Dual {
	e := math.Exp(d.real)
	return Dual{real: e, sens: scaled(d, e)}
}

// Log returns the natural logarithm of d. Non-positive real parts follow math.Log.
func (d Dual) Log() Dual {
	return Dual{real: math.Log(d.real), sens: scaled(d, 1/d.real)}
}

// Pow returns d^p for a constant exponent.
func (d Dual) Pow(p float64) Dual {
	return Dual{real: math.Pow(d.real, p), sens: scaled(d, p*math.Pow(d.real, p-1))}
}

// Sqrt returns the square root of d.
func (d Dual) Sqrt() Dual {
	s := math.Sqrt(d.real)
	return Dual{real: s, sens: scaled(d, 0.5/s)}
}

// Sum adds ds left to right. The empty sum is 0.
func Sum(ds ...Dual) Dual {
	var total Dual
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
