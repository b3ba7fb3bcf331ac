package tensor

import (
	"testing"

	"github.com/born-ml/minidiff/internal/parallel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false, false},
		{"column bias", Shape{2, 3}, Shape{2, 1}, Shape{2, 3}, true, false},
		{"row bias", Shape{1, 3}, Shape{2, 3}, Shape{2, 3}, true, false},
		{"scalar", Shape{}, Shape{2, 3}, Shape{2, 3}, true, false},
		{"vector promotion", Shape{2, 3}, Shape{3}, Shape{2, 3}, true, false},
		{"incompatible", Shape{2, 4}, Shape{2, 3}, nil, false, true},
		{"incompatible vector", Shape{2, 3}, Shape{2}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrShapeMismatch))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestMatrix_Ragged(t *testing.T) {
	_, err := Matrix([][]float64{{1, 2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestEmptyInputsRejected(t *testing.T) {
	assert.Panics(t, func() { Vector() })

	_, err := Matrix(nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = Matrix([][]float64{{}})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestNew_LengthMismatch(t *testing.T) {
	_, err := New(Shape{2, 2}, []float64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = New(Shape{2, 2, 2}, make([]float64, 8))
	assert.True(t, errors.Is(err, ErrShapeMismatch), "rank 3 is rejected")
}

func TestAdd_ColumnBias(t *testing.T) {
	m := MustMatrix([][]float64{{1, 2, 3}, {4, 5, 6}})
	b := MustMatrix([][]float64{{10}, {20}})

	out, err := Add(m, b)
	require.NoError(t, err)

	want := MustMatrix([][]float64{{11, 12, 13}, {24, 25, 26}})
	assert.True(t, out.Equal(want), "got %v", out)
}

func TestMul_Scalar(t *testing.T) {
	m := MustMatrix([][]float64{{1, 2}, {3, 4}})

	out, err := Mul(m, Scalar(0.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 1.5, 2}, out.Data())

	out, err = Mul(Scalar(2), m)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6, 8}, out.Data())
}

func TestBinary_ShapeMismatch(t *testing.T) {
	a := Zeros(Shape{2, 3})
	b := Zeros(Shape{3, 2})

	_, err := Sub(a, b)
	require.Error(t, err)

	var se *ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "sub", se.Op)
	assert.Equal(t, Shape{2, 3}, se.Left)
	assert.Equal(t, Shape{3, 2}, se.Right)
}

func TestSumAxis(t *testing.T) {
	m := MustMatrix([][]float64{{1, 2, 3}, {4, 5, 6}})

	rows := SumAxis(m, 1)
	assert.Equal(t, Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Data())

	cols := SumAxis(m, 0)
	assert.Equal(t, Shape{1, 3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())
}

func TestReduceTo(t *testing.T) {
	g := Ones(Shape{2, 3})

	tests := []struct {
		name   string
		target Shape
		want   []float64
	}{
		{"same shape", Shape{2, 3}, []float64{1, 1, 1, 1, 1, 1}},
		{"column bias", Shape{2, 1}, []float64{3, 3}},
		{"row bias", Shape{1, 3}, []float64{2, 2, 2}},
		{"vector", Shape{3}, []float64{2, 2, 2}},
		{"scalar", Shape{}, []float64{6}},
		{"one by one", Shape{1, 1}, []float64{6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReduceTo(g, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.target, got.Shape())
			assert.Equal(t, tt.want, got.Data())
		})
	}
}

func TestReduceTo_DoesNotAlias(t *testing.T) {
	g := Ones(Shape{2, 2})
	got, err := ReduceTo(g, Shape{2, 2})
	require.NoError(t, err)

	got.Data()[0] = 42
	assert.Equal(t, 1.0, g.Data()[0])
}

func TestReduceTo_Incompatible(t *testing.T) {
	_, err := ReduceTo(Ones(Shape{2, 1}), Shape{2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestMatMul(t *testing.T) {
	a := MustMatrix([][]float64{{1, 2, 3}, {4, 5, 6}})
	b := MustMatrix([][]float64{{7, 8}, {9, 10}, {11, 12}})

	out, err := MatMul(a, b)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())

	_, err = MatMul(a, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = MatMul(Vector(1, 2), b)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestMatMul_ParallelMatchesSequential(t *testing.T) {
	rows := make([][]float64, 64)
	for i := range rows {
		rows[i] = make([]float64, 48)
		for j := range rows[i] {
			rows[i][j] = float64((i*31+j*17)%13) - 6
		}
	}
	a := MustMatrix(rows)
	b := Transpose(a)

	prev := SetParallelConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})
	par, err := MatMul(a, b)
	require.NoError(t, err)

	SetParallelConfig(parallel.Sequential())
	seq, err := MatMul(a, b)
	require.NoError(t, err)
	SetParallelConfig(prev)

	assert.True(t, par.Equal(seq))
}

func TestTranspose(t *testing.T) {
	a := MustMatrix([][]float64{{1, 2, 3}, {4, 5, 6}})
	at := Transpose(a)

	assert.Equal(t, Shape{3, 2}, at.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, at.Data())
	assert.Equal(t, 6.0, at.At(2, 1))
}

func TestBroadcastTo(t *testing.T) {
	out, err := BroadcastTo(MustMatrix([][]float64{{1}, {2}}), Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, out.Data())

	_, err = BroadcastTo(Zeros(Shape{2, 3}), Shape{2, 1})
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestArray_AccumulateAndZero(t *testing.T) {
	a := Zeros(Shape{2})
	require.NoError(t, a.AddInPlace(Vector(1, 2)))
	require.NoError(t, a.AddInPlace(Vector(1, 2)))
	assert.Equal(t, []float64{2, 4}, a.Data())

	require.NoError(t, a.AXPYInPlace(-0.5, Vector(2, 2)))
	assert.Equal(t, []float64{1, 3}, a.Data())

	err := a.AddInPlace(Vector(1, 2, 3))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	a.Zero()
	assert.Equal(t, []float64{0, 0}, a.Data())
}

func TestFloor(t *testing.T) {
	assert.Equal(t, Epsilon, Floor(0))
	assert.Equal(t, Epsilon, Floor(-3))
	assert.Equal(t, 2.0, Floor(2))
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "()", Shape{}.String())
	assert.Equal(t, "(2,3)", Shape{2, 3}.String())
}
