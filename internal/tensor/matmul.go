package tensor

import (
	"github.com/born-ml/minidiff/internal/parallel"
)

// MatMul performs matrix multiplication (M, K) @ (K, N) → (M, N).
//
// Both operands must be rank 2 and the inner dimensions must agree, otherwise
// a *ShapeError is returned. Output rows are computed in parallel for large
// operands; each row is owned by one goroutine.
func MatMul(a, b *Array) (*Array, error) {
	if len(a.shape) != 2 || len(b.shape) != 2 || a.shape[1] != b.shape[0] {
		return nil, &ShapeError{Op: "matmul", Left: a.shape, Right: b.shape}
	}

	m, k, n := a.shape[0], a.shape[1], b.shape[1]
	out := Zeros(Shape{m, n})
	ad, bd, cd := a.data, b.data, out.data

	cfg := kernelConfig
	// Row granularity: one task is a whole output row of n*k multiply-adds.
	cfg.MinChunkSize = max(1, cfg.MinChunkSize/max(1, n*k))
	parallel.For(m, func(i int) {
		row := cd[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			aip := ad[i*k+p]
			bRow := bd[p*n : (p+1)*n]
			for j, bv := range bRow {
				row[j] += aip * bv
			}
		}
	}, cfg)

	return out, nil
}

// Transpose returns the transpose of a rank-2 array.
// Scalars and vectors are returned as clones.
func Transpose(a *Array) *Array {
	if len(a.shape) < 2 {
		return a.Clone()
	}
	rows, cols := a.shape[0], a.shape[1]
	out := Zeros(Shape{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = a.data[i*cols+j]
		}
	}
	return out
}
