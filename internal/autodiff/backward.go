package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
)

// Backward computes the gradient of root with respect to every node it
// depends on.
//
// Algorithm:
//  1. Zero the accumulators of the reachable non-leaf nodes
//  2. Seed root's accumulator with ones of root's shape
//  3. Walk the arena from root down to index 0; for each reachable node,
//     fire its backward rule with its fully accumulated gradient
//
// Leaf accumulators are only ever added to, so calling Backward twice without
// ZeroGrad accumulates both passes. Backward on a leaf just seeds it.
func (g *Graph) Backward(root Var) error {
	g.check(root)
	reachable := g.reachable(root.id)

	for i := root.id; i >= 0; i-- {
		if reachable[i] && g.nodes[i].arity > 0 {
			g.nodes[i].grad.Zero()
		}
	}
	g.nodes[root.id].grad.Fill(1)

	for i := root.id; i >= 0; i-- {
		if !reachable[i] || g.nodes[i].arity == 0 {
			continue
		}
		if err := g.backwardNode(i); err != nil {
			return errors.Wrapf(err, "backward through %s#%d", g.nodes[i].kind, i)
		}
	}
	return nil
}

// backwardNode applies the local rule of node i to its operands.
func (g *Graph) backwardNode(i int) error {
	n := &g.nodes[i]
	grad := n.grad

	switch n.kind {
	case KindAdd:
		if err := g.accumulate(n.parents[0], grad); err != nil {
			return err
		}
		return g.accumulate(n.parents[1], grad)

	case KindSub:
		if err := g.accumulate(n.parents[0], grad); err != nil {
			return err
		}
		return g.accumulate(n.parents[1], tensor.Scale(grad, -1))

	case KindMul:
		a, b := g.value(n.parents[0]), g.value(n.parents[1])
		if err := g.accumulateProduct(n.parents[0], grad, b); err != nil {
			return err
		}
		// A scalar-shaped b receives sum(g·a) through ReduceTo.
		return g.accumulateProduct(n.parents[1], grad, a)

	case KindDiv:
		a, b := g.value(n.parents[0]), g.value(n.parents[1])
		gradA, err := tensor.Binary(grad, b, func(gv, bv float64) float64 {
			return gv / bv
		})
		if err != nil {
			return err
		}
		if err := g.accumulate(n.parents[0], gradA); err != nil {
			return err
		}
		// d(a/b)/db = -a/b²
		quot, err := tensor.Binary(a, b, func(av, bv float64) float64 {
			return -av / (bv * bv)
		})
		if err != nil {
			return err
		}
		return g.accumulateProduct(n.parents[1], grad, quot)

	case KindPowConst:
		k := n.k
		integral := k == math.Trunc(k)
		local := tensor.Map(g.value(n.parents[0]), func(x float64) float64 {
			if !integral {
				x = tensor.Floor(x)
			}
			return k * math.Pow(x, k-1)
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindPow:
		a, b := g.value(n.parents[0]), g.value(n.parents[1])
		// d(a^b)/da = b·a^(b-1)
		dA, err := tensor.Binary(a, b, func(av, bv float64) float64 {
			return bv * math.Pow(av, bv-1)
		})
		if err != nil {
			return err
		}
		if err := g.accumulateProduct(n.parents[0], grad, dA); err != nil {
			return err
		}
		// d(a^b)/db = a^b·ln(max(a, ε))
		dB, err := tensor.Binary(a, b, func(av, bv float64) float64 {
			return math.Pow(av, bv) * math.Log(tensor.Floor(av))
		})
		if err != nil {
			return err
		}
		return g.accumulateProduct(n.parents[1], grad, dB)

	case KindMatMul:
		a, b := g.value(n.parents[0]), g.value(n.parents[1])
		// grad_a = grad @ b^T
		gradA, err := tensor.MatMul(grad, tensor.Transpose(b))
		if err != nil {
			return err
		}
		if err := g.accumulate(n.parents[0], gradA); err != nil {
			return err
		}
		// grad_b = a^T @ grad
		gradB, err := tensor.MatMul(tensor.Transpose(a), grad)
		if err != nil {
			return err
		}
		return g.accumulate(n.parents[1], gradB)

	case KindLog:
		local := tensor.Map(g.value(n.parents[0]), func(x float64) float64 {
			return 1 / tensor.Floor(x)
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindExp:
		return g.accumulateProduct(n.parents[0], grad, n.value)

	case KindSin:
		return g.accumulateProduct(n.parents[0], grad, tensor.Map(g.value(n.parents[0]), math.Cos))

	case KindCos:
		local := tensor.Map(g.value(n.parents[0]), func(x float64) float64 {
			return -math.Sin(x)
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindTan:
		local := tensor.Map(g.value(n.parents[0]), func(x float64) float64 {
			c := math.Cos(x)
			return 1 / (c * c)
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindSqrt:
		local := tensor.Map(n.value, func(s float64) float64 {
			return 1 / (2 * s)
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindReLU:
		mask := tensor.Map(g.value(n.parents[0]), func(x float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		})
		return g.accumulateProduct(n.parents[0], grad, mask)

	case KindSigmoid:
		// σ'(x) = σ(x)(1-σ(x)), computed from the stored output.
		local := tensor.Map(n.value, func(s float64) float64 {
			return s * (1 - s)
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindTanh:
		local := tensor.Map(n.value, func(t float64) float64 {
			return 1 - t*t
		})
		return g.accumulateProduct(n.parents[0], grad, local)

	case KindNeg:
		return g.accumulate(n.parents[0], tensor.Scale(grad, -1))

	case KindScale:
		return g.accumulate(n.parents[0], tensor.Scale(grad, n.k))

	case KindSum:
		spread := tensor.Full(g.value(n.parents[0]).Shape(), grad.Item())
		return g.accumulate(n.parents[0], spread)

	case KindMean:
		target := g.value(n.parents[0])
		spread := tensor.Full(target.Shape(), grad.Item()/float64(target.Len()))
		return g.accumulate(n.parents[0], spread)
	}

	panic(fmt.Sprintf("autodiff: no backward rule for %s", n.kind))
}

func (g *Graph) value(id int) *tensor.Array {
	return g.nodes[id].value
}

// accumulate reduces contrib to the operand's shape and adds it into the
// operand's gradient accumulator.
func (g *Graph) accumulate(id int, contrib *tensor.Array) error {
	dst := g.nodes[id].grad
	reduced, err := tensor.ReduceTo(contrib, dst.Shape())
	if err != nil {
		return err
	}
	return dst.AddInPlace(reduced)
}

// accumulateProduct accumulates grad·local into operand id.
func (g *Graph) accumulateProduct(id int, grad, local *tensor.Array) error {
	contrib, err := tensor.Mul(grad, local)
	if err != nil {
		return err
	}
	return g.accumulate(id, contrib)
}
