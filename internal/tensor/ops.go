package tensor

import (
	"github.com/born-ml/minidiff/internal/parallel"
)

// kernelConfig controls parallel execution of element-wise and matmul kernels.
// Arrays below MinChunkSize elements run sequentially.
var kernelConfig = parallel.DefaultConfig()

// SetParallelConfig replaces the kernel parallelism settings and returns the
// previous ones. Each output element is written by exactly one goroutine, so
// results do not depend on the setting.
func SetParallelConfig(cfg parallel.Config) parallel.Config {
	prev := kernelConfig
	kernelConfig = cfg
	return prev
}

// Map applies f to every element of a and returns a new array.
func Map(a *Array, f func(float64) float64) *Array {
	out := ZerosLike(a)
	src, dst := a.data, out.data
	parallel.For(len(src), func(i int) {
		dst[i] = f(src[i])
	}, kernelConfig)
	return out
}

// Binary combines a and b element-wise with f, broadcasting both operands to
// their common shape. Incompatible shapes return a *ShapeError.
func Binary(a, b *Array, f func(x, y float64) float64) (*Array, error) {
	outShape, needsBroadcast, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	out := Zeros(outShape)
	dst := out.data

	if !needsBroadcast {
		ad, bd := a.data, b.data
		parallel.For(len(dst), func(i int) {
			dst[i] = f(ad[i], bd[i])
		}, kernelConfig)
		return out, nil
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.shape, outShape)
	bStrides := broadcastStrides(b.shape, outShape)
	ad, bd := a.data, b.data
	parallel.For(len(dst), func(i int) {
		dst[i] = f(ad[flatIndex(i, outStrides, aStrides)], bd[flatIndex(i, outStrides, bStrides)])
	}, kernelConfig)
	return out, nil
}

// BroadcastTo expands a to shape by virtual repetition along broadcast axes.
func BroadcastTo(a *Array, shape Shape) (*Array, error) {
	outShape, _, err := BroadcastShapes(a.shape, shape)
	if err != nil {
		return nil, withOp(err, "broadcast_to")
	}
	if !outShape.Equal(shape) {
		return nil, &ShapeError{Op: "broadcast_to", Left: a.shape, Right: shape}
	}
	out := Zeros(shape)
	outStrides := shape.ComputeStrides()
	inStrides := broadcastStrides(a.shape, shape)
	for i := range out.data {
		out.data[i] = a.data[flatIndex(i, outStrides, inStrides)]
	}
	return out, nil
}

// broadcastStrides computes strides for reading inShape as if it had outShape.
// Padded and size-1 dimensions get stride 0.
func broadcastStrides(inShape, outShape Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}
	return strides
}

// flatIndex maps a flat output index to the flat input index.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	flat := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flat += coord * inStrides[i]
	}
	return flat
}

// Add returns a + b with broadcasting.
func Add(a, b *Array) (*Array, error) {
	out, err := Binary(a, b, func(x, y float64) float64 { return x + y })
	return out, withOp(err, "add")
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Array) (*Array, error) {
	out, err := Binary(a, b, func(x, y float64) float64 { return x - y })
	return out, withOp(err, "sub")
}

// Mul returns a * b element-wise with broadcasting.
func Mul(a, b *Array) (*Array, error) {
	out, err := Binary(a, b, func(x, y float64) float64 { return x * y })
	return out, withOp(err, "mul")
}

// Div returns a / b element-wise with broadcasting.
func Div(a, b *Array) (*Array, error) {
	out, err := Binary(a, b, func(x, y float64) float64 { return x / y })
	return out, withOp(err, "div")
}

// Scale returns k * a.
func Scale(a *Array, k float64) *Array {
	return Map(a, func(x float64) float64 { return k * x })
}
