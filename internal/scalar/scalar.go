// Package scalar implements reverse-mode automatic differentiation over
// single float64 values.
//
// It mirrors the tensor engine in internal/autodiff without shapes: a Tape is
// an arena of nodes, each node records the Kind of operation that produced it
// and the arena indices of its operands. Backward orders the reachable nodes
// with a depth-first post-order traversal guarded by a visited set, then fires
// each node's rule in reverse order.
//
// Example:
//
//	tape := scalar.NewTape()
//	x := tape.Var(2)
//	y := x.Add(tape.Const(2)).PowConst(2) // y = (x+2)²
//	tape.Backward(y)
//	x.Grad() // 8
package scalar

import (
	"fmt"

	"github.com/born-ml/minidiff/internal/autodiff"
)

type node struct {
	kind    autodiff.Kind
	value   float64
	grad    float64
	parents [2]int
	arity   int
	k       float64 // Constant exponent or factor
}

// Tape records scalar values and the operations that produced them.
// A Tape is not safe for concurrent use.
type Tape struct {
	nodes []node
}

// NewTape creates an empty tape.
func NewTape() *Tape {
	return &Tape{nodes: make([]node, 0, 32)}
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// Clear drops every node. Values issued before Clear must not be used again.
func (t *Tape) Clear() {
	t.nodes = t.nodes[:0]
}

// Var records a leaf holding x.
func (t *Tape) Var(x float64) Value {
	return t.push(node{kind: autodiff.KindLeaf, value: x})
}

// Const records a leaf holding x. It is identical to Var; the name documents
// intent at call sites.
func (t *Tape) Const(x float64) Value {
	return t.Var(x)
}

// ZeroGrad resets v's gradient to zero.
func (t *Tape) ZeroGrad(v Value) {
	t.check(v)
	t.nodes[v.id].grad = 0
}

func (t *Tape) push(n node) Value {
	t.nodes = append(t.nodes, n)
	return Value{t: t, id: len(t.nodes) - 1}
}

func (t *Tape) record(kind autodiff.Kind, value, k float64, operands ...Value) Value {
	t.check(operands...)
	n := node{kind: kind, value: value, arity: len(operands), k: k}
	for i, op := range operands {
		n.parents[i] = op.id
	}
	return t.push(n)
}

func (t *Tape) check(vs ...Value) {
	for _, v := range vs {
		if v.t != t {
			panic("scalar: value belongs to a different tape")
		}
		if v.id < 0 || v.id >= len(t.nodes) {
			panic(fmt.Sprintf("scalar: invalid node id %d (tape has %d nodes)", v.id, len(t.nodes)))
		}
	}
}

// Value is a handle to a node on a Tape.
type Value struct {
	t  *Tape
	id int
}

// ID returns the node's arena index.
func (v Value) ID() int { return v.id }

// Tape returns the tape v belongs to.
func (v Value) Tape() *Tape { return v.t }

// Val returns the node's value.
func (v Value) Val() float64 { return v.t.nodes[v.id].value }

// Grad returns the node's accumulated gradient.
func (v Value) Grad() float64 { return v.t.nodes[v.id].grad }

// Kind returns the operation that produced the node.
func (v Value) Kind() autodiff.Kind { return v.t.nodes[v.id].kind }

// SetVal overwrites a leaf's value. Nodes already built from it keep their
// old values; rebuild the expression to see the change.
func (v Value) SetVal(x float64) {
	n := &v.t.nodes[v.id]
	if n.arity != 0 {
		panic("scalar: SetVal on a non-leaf node")
	}
	n.value = x
}

// Parents returns the node's operands in order.
func (v Value) Parents() []Value {
	n := &v.t.nodes[v.id]
	ps := make([]Value, n.arity)
	for i := range ps {
		ps[i] = Value{t: v.t, id: n.parents[i]}
	}
	return ps
}

// String formats the value and gradient.
func (v Value) String() string {
	return fmt.Sprintf("Value(%s#%d val=%g grad=%g)", v.Kind(), v.id, v.Val(), v.Grad())
}
