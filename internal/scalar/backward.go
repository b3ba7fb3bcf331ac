package scalar

import (
	"fmt"
	"math"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
)

// TopoOrder returns every node reachable from root, each after all of its
// operands, root last.
//
// The traversal is a depth-first post-order with a visited set keyed on node
// identity, so a node reached along several paths appears once. It uses an
// explicit stack; long chains do not grow the goroutine stack.
func (t *Tape) TopoOrder(root Value) []Value {
	t.check(root)

	type frame struct {
		id   int
		next int // next operand to visit
	}

	visited := make(map[int]struct{})
	var order []Value
	stack := []frame{{id: root.id}}
	visited[root.id] = struct{}{}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := &t.nodes[top.id]
		if top.next < n.arity {
			p := n.parents[top.next]
			top.next++
			if _, seen := visited[p]; !seen {
				visited[p] = struct{}{}
				stack = append(stack, frame{id: p})
			}
			continue
		}
		order = append(order, Value{t: t, id: top.id})
		stack = stack[:len(stack)-1]
	}
	return order
}

// Backward computes d root / d node for every node root depends on.
//
// Reachable non-leaf gradients are reset first and root is seeded with 1.
// Leaf gradients only accumulate, so two calls without ZeroGrad add up.
func (t *Tape) Backward(root Value) {
	order := t.TopoOrder(root)
	for _, v := range order {
		if t.nodes[v.id].arity > 0 {
			t.nodes[v.id].grad = 0
		}
	}
	t.nodes[root.id].grad = 1

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i].id
		if t.nodes[id].arity > 0 {
			t.backwardNode(id)
		}
	}
}

func (t *Tape) backwardNode(id int) {
	n := &t.nodes[id]
	g := n.grad
	p0 := n.parents[0]
	a := t.nodes[p0].value

	switch n.kind {
	case autodiff.KindAdd:
		t.nodes[p0].grad += g
		t.nodes[n.parents[1]].grad += g
	case autodiff.KindSub:
		t.nodes[p0].grad += g
		t.nodes[n.parents[1]].grad -= g
	case autodiff.KindMul:
		b := t.nodes[n.parents[1]].value
		t.nodes[p0].grad += g * b
		t.nodes[n.parents[1]].grad += g * a
	case autodiff.KindDiv:
		b := t.nodes[n.parents[1]].value
		t.nodes[p0].grad += g / b
		t.nodes[n.parents[1]].grad += g * (-a / (b * b))
	case autodiff.KindNeg:
		t.nodes[p0].grad -= g
	case autodiff.KindScale:
		t.nodes[p0].grad += g * n.k
	case autodiff.KindPowConst:
		t.nodes[p0].grad += g * n.k * math.Pow(powBase(a, n.k), n.k-1)
	case autodiff.KindPow:
		b := t.nodes[n.parents[1]].value
		t.nodes[p0].grad += g * b * math.Pow(a, b-1)
		t.nodes[n.parents[1]].grad += g * n.value * math.Log(tensor.Floor(a))
	case autodiff.KindLog:
		t.nodes[p0].grad += g / tensor.Floor(a)
	case autodiff.KindExp:
		t.nodes[p0].grad += g * n.value
	case autodiff.KindSin:
		t.nodes[p0].grad += g * math.Cos(a)
	case autodiff.KindCos:
		t.nodes[p0].grad -= g * math.Sin(a)
	case autodiff.KindTan:
		c := math.Cos(a)
		t.nodes[p0].grad += g / (c * c)
	case autodiff.KindSqrt:
		t.nodes[p0].grad += g / (2 * n.value)
	case autodiff.KindReLU:
		if a > 0 {
			t.nodes[p0].grad += g
		}
	case autodiff.KindSigmoid:
		t.nodes[p0].grad += g * n.value * (1 - n.value)
	case autodiff.KindTanh:
		t.nodes[p0].grad += g * (1 - n.value*n.value)
	default:
		panic(fmt.Sprintf("scalar: no backward rule for %s", n.kind))
	}
}
