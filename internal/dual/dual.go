// Package dual implements forward-mode automatic differentiation with dual
// numbers.
//
// A Number carries a value and the derivative of that value with respect to
// one chosen input. Every operation propagates both in O(1); there is no graph
// and no backward pass. One evaluation therefore yields one directional
// derivative, which suits functions with few inputs.
package dual

import (
	"fmt"
	"math"
)

// Number is a dual number Val + Der·ε with ε² = 0.
type Number struct {
	Val float64
	Der float64
}

// Variable returns the input being differentiated: x with derivative 1.
func Variable(x float64) Number {
	return Number{Val: x, Der: 1}
}

// Constant returns x with derivative 0.
func Constant(x float64) Number {
	return Number{Val: x}
}

// Add returns a + b.
func (a Number) Add(b Number) Number {
	return Number{a.Val + b.Val, a.Der + b.Der}
}

// Sub returns a - b.
func (a Number) Sub(b Number) Number {
	return Number{a.Val - b.Val, a.Der - b.Der}
}

// Mul returns a * b.
func (a Number) Mul(b Number) Number {
	return Number{a.Val * b.Val, a.Der*b.Val + a.Val*b.Der}
}

// Div returns a / b.
func (a Number) Div(b Number) Number {
	return Number{a.Val / b.Val, (b.Val*a.Der - a.Val*b.Der) / (b.Val * b.Val)}
}

// Neg returns -a.
func (a Number) Neg() Number {
	return Number{-a.Val, -a.Der}
}

// Scale returns k * a.
func (a Number) Scale(k float64) Number {
	return Number{k * a.Val, k * a.Der}
}

// PowConst returns a^k for a constant exponent.
func (a Number) PowConst(k float64) Number {
	return Number{math.Pow(a.Val, k), k * math.Pow(a.Val, k-1) * a.Der}
}

// Pow returns a^b. The exponent term uses ln(a); a must be positive when
// b carries a derivative.
func (a Number) Pow(b Number) Number {
	val := math.Pow(a.Val, b.Val)
	der := b.Val * math.Pow(a.Val, b.Val-1) * a.Der
	if b.Der != 0 {
		der += val * math.Log(a.Val) * b.Der
	}
	return Number{val, der}
}

// String formats the number as "val = v, der = d".
func (a Number) String() string {
	return fmt.Sprintf("val = %g, der = %g", a.Val, a.Der)
}

// Sin returns sin(a).
func Sin(a Number) Number {
	return Number{math.Sin(a.Val), math.Cos(a.Val) * a.Der}
}

// Cos returns cos(a).
func Cos(a Number) Number {
	return Number{math.Cos(a.Val), -math.Sin(a.Val) * a.Der}
}

// Tan returns tan(a).
func Tan(a Number) Number {
	c := math.Cos(a.Val)
	return Number{math.Tan(a.Val), a.Der / (c * c)}
}

// Exp returns e^a.
func Exp(a Number) Number {
	e := math.Exp(a.Val)
	return Number{e, e * a.Der}
}

// Log returns ln(a).
func Log(a Number) Number {
	return Number{math.Log(a.Val), a.Der / a.Val}
}

// Sqrt returns √a.
func Sqrt(a Number) Number {
	s := math.Sqrt(a.Val)
	return Number{s, a.Der / (2 * s)}
}

// Sinh returns sinh(a).
func Sinh(a Number) Number {
	return Number{math.Sinh(a.Val), math.Cosh(a.Val) * a.Der}
}

// Cosh returns cosh(a).
func Cosh(a Number) Number {
	return Number{math.Cosh(a.Val), math.Sinh(a.Val) * a.Der}
}

// Tanh returns tanh(a).
func Tanh(a Number) Number {
	t := math.Tanh(a.Val)
	return Number{t, (1 - t*t) * a.Der}
}

// Sigmoid returns 1 / (1 + e^-a).
func Sigmoid(a Number) Number {
	s := 1 / (1 + math.Exp(-a.Val))
	return Number{s, s * (1 - s) * a.Der}
}

// ReLU returns max(0, a).
func ReLU(a Number) Number {
	if a.Val > 0 {
		return a
	}
	return Number{}
}

// Derivative evaluates f at x and returns f(x) and f'(x).
func Derivative(f func(Number) Number, x float64) (float64, float64) {
	out := f(Variable(x))
	return out.Val, out.Der
}
