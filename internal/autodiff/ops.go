package autodiff

import (
	"math"

	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
)

// Add records a + b. Operands broadcast; incompatible shapes return an error
// wrapping tensor.ErrShapeMismatch.
func (g *Graph) Add(a, b Var) (Var, error) {
	g.check(a, b)
	out, err := tensor.Add(a.Value(), b.Value())
	if err != nil {
		return Var{}, err
	}
	return g.record(KindAdd, out, 0, a, b), nil
}

// Sub records a - b with broadcasting.
func (g *Graph) Sub(a, b Var) (Var, error) {
	g.check(a, b)
	out, err := tensor.Sub(a.Value(), b.Value())
	if err != nil {
		return Var{}, err
	}
	return g.record(KindSub, out, 0, a, b), nil
}

// Mul records the element-wise product a * b with broadcasting. A scalar
// operand multiplies every element of the other.
func (g *Graph) Mul(a, b Var) (Var, error) {
	g.check(a, b)
	out, err := tensor.Mul(a.Value(), b.Value())
	if err != nil {
		return Var{}, err
	}
	return g.record(KindMul, out, 0, a, b), nil
}

// Div records a / b with broadcasting.
func (g *Graph) Div(a, b Var) (Var, error) {
	g.check(a, b)
	out, err := tensor.Div(a.Value(), b.Value())
	if err != nil {
		return Var{}, err
	}
	return g.record(KindDiv, out, 0, a, b), nil
}

// PowConst records a^k for a constant exponent k.
//
// For non-integer k the base is floored to tensor.Epsilon, so negative bases
// yield Epsilon^k rather than NaN. With WithStrictDomain a non-positive base
// returns ErrNumericDomain instead.
func (g *Graph) PowConst(a Var, k float64) (Var, error) {
	g.check(a)
	integral := k == math.Trunc(k)
	if !integral && g.strictDomain {
		if err := positive(a.Value(), "pow"); err != nil {
			return Var{}, err
		}
	}
	out := tensor.Map(a.Value(), func(x float64) float64 {
		if !integral {
			x = tensor.Floor(x)
		}
		return math.Pow(x, k)
	})
	return g.record(KindPowConst, out, k, a), nil
}

// Pow records a^b where the exponent is itself a container. The gradient
// with respect to b uses ln(max(a, Epsilon)). With WithStrictDomain a
// non-positive base returns ErrNumericDomain.
func (g *Graph) Pow(a, b Var) (Var, error) {
	g.check(a, b)
	if g.strictDomain {
		if err := positive(a.Value(), "pow"); err != nil {
			return Var{}, err
		}
	}
	out, err := tensor.Binary(a.Value(), b.Value(), math.Pow)
	if err != nil {
		return Var{}, errors.WithMessage(err, "pow")
	}
	return g.record(KindPow, out, 0, a, b), nil
}

// MatMul records the matrix product a @ b. Both operands must be rank 2
// with matching inner dimensions.
func (g *Graph) MatMul(a, b Var) (Var, error) {
	g.check(a, b)
	out, err := tensor.MatMul(a.Value(), b.Value())
	if err != nil {
		return Var{}, err
	}
	return g.record(KindMatMul, out, 0, a, b), nil
}

// Log records ln(max(a, Epsilon)). Values at or below zero are floored, which
// is an approximation near the boundary. With WithStrictDomain they return
// ErrNumericDomain instead.
func (g *Graph) Log(a Var) (Var, error) {
	g.check(a)
	if g.strictDomain {
		if err := positive(a.Value(), "log"); err != nil {
			return Var{}, err
		}
	}
	out := tensor.Map(a.Value(), func(x float64) float64 {
		return math.Log(tensor.Floor(x))
	})
	return g.record(KindLog, out, 0, a), nil
}

// Exp records e^a.
func (g *Graph) Exp(a Var) (Var, error) {
	g.check(a)
	return g.record(KindExp, tensor.Map(a.Value(), math.Exp), 0, a), nil
}

// Sin records sin(a).
func (g *Graph) Sin(a Var) (Var, error) {
	g.check(a)
	return g.record(KindSin, tensor.Map(a.Value(), math.Sin), 0, a), nil
}

// Cos records cos(a).
func (g *Graph) Cos(a Var) (Var, error) {
	g.check(a)
	return g.record(KindCos, tensor.Map(a.Value(), math.Cos), 0, a), nil
}

// Tan records tan(a).
func (g *Graph) Tan(a Var) (Var, error) {
	g.check(a)
	return g.record(KindTan, tensor.Map(a.Value(), math.Tan), 0, a), nil
}

// Sqrt records √a. Negative elements produce NaN; with WithStrictDomain they
// return ErrNumericDomain instead.
func (g *Graph) Sqrt(a Var) (Var, error) {
	g.check(a)
	if g.strictDomain {
		for i, x := range a.Value().Data() {
			if x < 0 {
				return Var{}, errors.Wrapf(tensor.ErrNumericDomain, "sqrt: element %d is %g", i, x)
			}
		}
	}
	return g.record(KindSqrt, tensor.Map(a.Value(), math.Sqrt), 0, a), nil
}

// ReLU records max(0, a).
func (g *Graph) ReLU(a Var) (Var, error) {
	g.check(a)
	out := tensor.Map(a.Value(), func(x float64) float64 {
		return math.Max(0, x)
	})
	return g.record(KindReLU, out, 0, a), nil
}

// Sigmoid records 1 / (1 + e^-a).
func (g *Graph) Sigmoid(a Var) (Var, error) {
	g.check(a)
	return g.record(KindSigmoid, tensor.Map(a.Value(), sigmoid), 0, a), nil
}

// Tanh records tanh(a).
func (g *Graph) Tanh(a Var) (Var, error) {
	g.check(a)
	return g.record(KindTanh, tensor.Map(a.Value(), math.Tanh), 0, a), nil
}

// Neg records -a.
func (g *Graph) Neg(a Var) (Var, error) {
	g.check(a)
	return g.record(KindNeg, tensor.Scale(a.Value(), -1), 0, a), nil
}

// Scale records k * a for a constant k.
func (g *Graph) Scale(a Var, k float64) (Var, error) {
	g.check(a)
	return g.record(KindScale, tensor.Scale(a.Value(), k), k, a), nil
}

// Sum records the sum of all elements of a as a scalar.
func (g *Graph) Sum(a Var) (Var, error) {
	g.check(a)
	return g.record(KindSum, tensor.SumAll(a.Value()), 0, a), nil
}

// Mean records the mean of all elements of a as a scalar.
func (g *Graph) Mean(a Var) (Var, error) {
	g.check(a)
	return g.record(KindMean, tensor.Mean(a.Value()), 0, a), nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// positive returns ErrNumericDomain if any element of a is <= 0.
func positive(a *tensor.Array, op string) error {
	for i, x := range a.Data() {
		if x <= 0 {
			return errors.Wrapf(tensor.ErrNumericDomain, "%s: element %d is %g", op, i, x)
		}
	}
	return nil
}
