package scalar_test

import (
	"math"
	"testing"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/dual"
	"github.com/born-ml/minidiff/internal/scalar"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackward_SquareOfShift(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(2)
	y := x.Add(tape.Const(2)).PowConst(2)

	assert.Equal(t, 16.0, y.Val())

	tape.Backward(y)
	assert.Equal(t, 8.0, x.Grad())
}

// TestBackward_AgreesWithDual compares reverse-mode gradients against
// forward-mode dual numbers for each primitive.
func TestBackward_AgreesWithDual(t *testing.T) {
	tests := []struct {
		name    string
		x       float64
		reverse func(tape *scalar.Tape, x scalar.Value) scalar.Value
		forward func(x dual.Number) dual.Number
	}{
		{"add", 1.3,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Add(tp.Const(4)).Add(x) },
			func(x dual.Number) dual.Number { return x.Add(dual.Constant(4)).Add(x) }},
		{"sub", 1.3,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return tp.Const(4).Sub(x.Mul(x)) },
			func(x dual.Number) dual.Number { return dual.Constant(4).Sub(x.Mul(x)) }},
		{"div", 0.7,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Sin().Div(x) },
			func(x dual.Number) dual.Number { return dual.Sin(x).Div(x) }},
		{"pow const", 1.9,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.PowConst(3.5) },
			func(x dual.Number) dual.Number { return x.PowConst(3.5) }},
		{"pow", 1.4,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Pow(x) },
			func(x dual.Number) dual.Number { return x.Pow(x) }},
		{"log", 2.5,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Mul(x).Log() },
			func(x dual.Number) dual.Number { return dual.Log(x.Mul(x)) }},
		{"exp", -0.4,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Scale(2).Exp() },
			func(x dual.Number) dual.Number { return dual.Exp(x.Scale(2)) }},
		{"cos", 0.9,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Cos().Mul(x) },
			func(x dual.Number) dual.Number { return dual.Cos(x).Mul(x) }},
		{"tan", 0.5,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Tan() },
			dual.Tan},
		{"sqrt", 3.0,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Sqrt().Neg() },
			func(x dual.Number) dual.Number { return dual.Sqrt(x).Neg() }},
		{"relu", 0.6,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.ReLU().Mul(x) },
			func(x dual.Number) dual.Number { return dual.ReLU(x).Mul(x) }},
		{"relu negative", -0.6,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.ReLU() },
			dual.ReLU},
		{"sigmoid", 0.3,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Sigmoid() },
			dual.Sigmoid},
		{"tanh", -0.8,
			func(tp *scalar.Tape, x scalar.Value) scalar.Value { return x.Tanh().PowConst(2) },
			func(x dual.Number) dual.Number { return dual.Tanh(x).PowConst(2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := scalar.NewTape()
			x := tape.Var(tt.x)
			y := tt.reverse(tape, x)
			tape.Backward(y)

			want, wantDer := dual.Derivative(tt.forward, tt.x)
			assert.InDelta(t, want, y.Val(), 1e-12)
			assert.InDelta(t, wantDer, x.Grad(), 1e-9)
		})
	}
}

func TestBackward_Diamond(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(0.5)
	u := x.Mul(x)
	y := u.Sin().Add(u.Exp())

	tape.Backward(y)

	want := (math.Cos(0.25) + math.Exp(0.25)) * 2 * 0.5
	assert.InDelta(t, want, x.Grad(), 1e-12)
}

func TestTopoOrder(t *testing.T) {
	tape := scalar.NewTape()
	a := tape.Var(1)
	b := tape.Var(2)
	unused := tape.Var(3)
	c := a.Mul(b)
	d := c.Add(a)
	e := d.Mul(c).Sigmoid()

	order := tape.TopoOrder(e)

	pos := make(map[int]int)
	for i, v := range order {
		_, dup := pos[v.ID()]
		require.False(t, dup, "node %v twice", v)
		pos[v.ID()] = i
	}
	for _, v := range order {
		for _, p := range v.Parents() {
			assert.Less(t, pos[p.ID()], pos[v.ID()])
		}
	}
	assert.Len(t, order, 6)
	assert.NotContains(t, pos, unused.ID())
	assert.Equal(t, e.ID(), order[len(order)-1].ID())
}

func TestTopoOrder_DeepChain(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(1)
	y := x
	for range 100000 {
		y = y.Add(x)
	}

	tape.Backward(y)
	assert.Equal(t, 100001.0, x.Grad())
}

func TestZeroGrad_AndRepeatedBackward(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(2)
	y := x.Add(tape.Const(2)).PowConst(2)

	tape.Backward(y)
	tape.Backward(y)
	assert.Equal(t, 16.0, x.Grad(), "two passes accumulate")

	tape.ZeroGrad(x)
	tape.ZeroGrad(x)
	assert.Zero(t, x.Grad())

	tape.Backward(y)
	assert.Equal(t, 8.0, x.Grad())
}

func TestBackward_Leaf(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(5)
	tape.Backward(x)
	assert.Equal(t, 1.0, x.Grad())
}

func TestLog_Floor(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(0)
	y := x.Log()
	tape.Backward(y)

	assert.InDelta(t, math.Log(tensor.Epsilon), y.Val(), 1e-12)
	assert.InDelta(t, 1/tensor.Epsilon, x.Grad(), 1e-3)
}

func TestPow_NonPositiveBase(t *testing.T) {
	tape := scalar.NewTape()
	a := tape.Var(0)
	b := tape.Var(3)
	y := a.Pow(b)
	tape.Backward(y)

	assert.False(t, math.IsNaN(b.Grad()), "exponent gradient uses the floored log")
	assert.Zero(t, b.Grad())
}

// TestPowConst_MatchesTensorEngine checks that both engines floor a negative
// base under a fractional exponent and leave integer exponents alone.
func TestPowConst_MatchesTensorEngine(t *testing.T) {
	tests := []struct {
		name          string
		x, k          float64
		want, wantDer float64
	}{
		{"fractional negative base", -4, 0.5, 1e-4, 5000},
		{"fractional zero base", 0, 1.5, math.Pow(tensor.Epsilon, 1.5), 1.5 * math.Pow(tensor.Epsilon, 0.5)},
		{"integer negative base", -2, 3, -8, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := scalar.NewTape()
			x := tape.Var(tt.x)
			y := x.PowConst(tt.k)
			tape.Backward(y)

			g := autodiff.New()
			xv := g.Leaf(tensor.Scalar(tt.x))
			yv := autodiff.Must(g.PowConst(xv, tt.k))
			require.NoError(t, g.Backward(yv))

			require.False(t, math.IsNaN(y.Val()))
			require.False(t, math.IsNaN(x.Grad()))
			assert.InDelta(t, tt.want, y.Val(), 1e-9*math.Max(1, math.Abs(tt.want)))
			assert.InDelta(t, tt.wantDer, x.Grad(), 1e-9*math.Max(1, math.Abs(tt.wantDer)))
			assert.InDelta(t, yv.Value().Item(), y.Val(), 1e-12)
			assert.InDelta(t, xv.Grad().Item(), x.Grad(), 1e-9*math.Max(1, math.Abs(tt.wantDer)))
		})
	}
}

func TestSetVal_RequiresRebuild(t *testing.T) {
	tape := scalar.NewTape()
	x := tape.Var(1)
	y := x.Scale(3)

	x.SetVal(2)
	assert.Equal(t, 3.0, y.Val())
	assert.Equal(t, 6.0, x.Scale(3).Val())
	assert.Panics(t, func() { y.SetVal(0) })
}

func TestForeignValuePanics(t *testing.T) {
	a := scalar.NewTape().Var(1)
	b := scalar.NewTape().Var(1)
	assert.Panics(t, func() { a.Add(b) })
}

func TestClear(t *testing.T) {
	tape := scalar.NewTape()
	tape.Var(1).Exp()
	require.Equal(t, 2, tape.Len())
	tape.Clear()
	assert.Zero(t, tape.Len())
}
