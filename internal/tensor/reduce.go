package tensor

import "fmt"

// SumAll sums every element into a scalar array.
func SumAll(a *Array) *Array {
	var sum float64
	for _, v := range a.data {
		sum += v
	}
	return Scalar(sum)
}

// Mean returns the arithmetic mean of all elements as a scalar array.
func Mean(a *Array) *Array {
	s := SumAll(a)
	s.data[0] /= float64(len(a.data))
	return s
}

// SumAxis sums a along axis, keeping the axis with size 1.
//
// Example:
//
//	SumAxis((2,3), 1) → (2,1)  row-wise sums
//	SumAxis((2,3), 0) → (1,3)  column-wise sums
func SumAxis(a *Array, axis int) *Array {
	shape := a.shape
	if axis < 0 || axis >= len(shape) {
		panic(fmt.Sprintf("tensor: invalid axis %d for shape %v", axis, shape))
	}

	outShape := shape.Clone()
	outShape[axis] = 1
	out := Zeros(outShape)

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	for i, v := range a.data {
		rem := i
		off := 0
		for d := range shape {
			coord := rem / inStrides[d]
			rem %= inStrides[d]
			if d != axis {
				off += coord * outStrides[d]
			}
		}
		out.data[off] += v
	}
	return out
}

// ReduceTo reduces a gradient g, computed in the broadcast output shape, to
// target by summing over exactly the axes along which target was broadcast.
// This mirrors BroadcastShapes: the result always has target's shape.
//
// Example:
//
//	Forward:  a(2,1) + b(2,3) → c(2,3)   a broadcast along axis 1
//	Backward: g(2,3) → ReduceTo(g, (2,1)) sums each row
func ReduceTo(g *Array, target Shape) (*Array, error) {
	if g.shape.Equal(target) {
		return g.Clone(), nil
	}
	if _, _, err := BroadcastShapes(target, g.shape); err != nil {
		return nil, withOp(err, "reduce")
	}

	// Scalar target: every element contributed.
	if len(target) == 0 {
		return SumAll(g), nil
	}

	result := g
	// Sum leading axes that target does not have.
	for len(result.shape) > len(target) {
		summed := SumAxis(result, 0)
		summed.shape = summed.shape[1:]
		result = summed
	}

	// Sum axes where target has size 1 but the gradient does not.
	for i := range target {
		if target[i] == 1 && result.shape[i] != 1 {
			result = SumAxis(result, i)
		}
	}

	if !result.shape.Equal(target) {
		return nil, &ShapeError{Op: "reduce", Left: g.shape, Right: target}
	}
	return result, nil
}
