package scalar

import (
	"math"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
)

// Add returns v + o.
func (v Value) Add(o Value) Value {
	return v.t.record(autodiff.KindAdd, v.Val()+o.Val(), 0, v, o)
}

// Sub returns v - o.
func (v Value) Sub(o Value) Value {
	return v.t.record(autodiff.KindSub, v.Val()-o.Val(), 0, v, o)
}

// Mul returns v * o.
func (v Value) Mul(o Value) Value {
	return v.t.record(autodiff.KindMul, v.Val()*o.Val(), 0, v, o)
}

// Div returns v / o.
func (v Value) Div(o Value) Value {
	return v.t.record(autodiff.KindDiv, v.Val()/o.Val(), 0, v, o)
}

// Neg returns -v.
func (v Value) Neg() Value {
	return v.t.record(autodiff.KindNeg, -v.Val(), 0, v)
}

// Scale returns k * v for a constant k.
func (v Value) Scale(k float64) Value {
	return v.t.record(autodiff.KindScale, k*v.Val(), k, v)
}

// PowConst returns v^k for a constant exponent. A non-integer k floors the
// base at Epsilon, as the tensor engine does.
func (v Value) PowConst(k float64) Value {
	return v.t.record(autodiff.KindPowConst, math.Pow(powBase(v.Val(), k), k), k, v)
}

// powBase floors x at Epsilon when k is not an integer.
func powBase(x, k float64) float64 {
	if k != math.Trunc(k) {
		return tensor.Floor(x)
	}
	return x
}

// Pow returns v^o. The gradient with respect to o uses ln(max(v, Epsilon)),
// the same floor the tensor engine applies.
func (v Value) Pow(o Value) Value {
	return v.t.record(autodiff.KindPow, math.Pow(v.Val(), o.Val()), 0, v, o)
}

// Log returns ln(max(v, Epsilon)).
func (v Value) Log() Value {
	return v.t.record(autodiff.KindLog, math.Log(tensor.Floor(v.Val())), 0, v)
}

// Exp returns e^v.
func (v Value) Exp() Value {
	return v.t.record(autodiff.KindExp, math.Exp(v.Val()), 0, v)
}

// Sin returns sin(v).
func (v Value) Sin() Value {
	return v.t.record(autodiff.KindSin, math.Sin(v.Val()), 0, v)
}

// Cos returns cos(v).
func (v Value) Cos() Value {
	return v.t.record(autodiff.KindCos, math.Cos(v.Val()), 0, v)
}

// Tan returns tan(v).
func (v Value) Tan() Value {
	return v.t.record(autodiff.KindTan, math.Tan(v.Val()), 0, v)
}

// Sqrt returns √v.
func (v Value) Sqrt() Value {
	return v.t.record(autodiff.KindSqrt, math.Sqrt(v.Val()), 0, v)
}

// ReLU returns max(0, v).
func (v Value) ReLU() Value {
	return v.t.record(autodiff.KindReLU, math.Max(0, v.Val()), 0, v)
}

// Sigmoid returns 1 / (1 + e^-v).
func (v Value) Sigmoid() Value {
	return v.t.record(autodiff.KindSigmoid, 1/(1+math.Exp(-v.Val())), 0, v)
}

// Tanh returns tanh(v).
func (v Value) Tanh() Value {
	return v.t.record(autodiff.KindTanh, math.Tanh(v.Val()), 0, v)
}
