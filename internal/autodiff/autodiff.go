// Package autodiff implements reverse-mode automatic differentiation over
// dense float64 arrays.
//
// Architecture:
//   - Graph: an arena of nodes in creation order. A node holds its value, its
//     gradient accumulator, an operation Kind and the arena indices of its
//     operands.
//   - Operands always have smaller indices than the node that consumes them,
//     so the graph is acyclic by construction and arena order is already a
//     topological order.
//   - Backward seeds the root with ones and walks the arena from the root down
//     to index 0, firing each reachable node's rule exactly once after all its
//     consumers have contributed to its gradient.
//   - Operands broadcast against each other like NumPy; backward rules sum the
//     incoming gradient over the broadcast axes before accumulating.
//
// Usage:
//
//	g := autodiff.New()
//	x := g.Leaf(tensor.Scalar(2))
//	s, _ := g.Add(x, g.Const(2))
//	y, _ := g.PowConst(s, 2)   // y = (x+2)²
//	_ = g.Backward(y)
//	x.Grad().Item()            // 8
package autodiff

import (
	"fmt"

	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
)

// node is one container in the arena.
type node struct {
	kind    Kind
	value   *tensor.Array
	grad    *tensor.Array
	parents [2]int
	arity   int
	k       float64 // Constant exponent (PowConst) or factor (Scale)
}

// Graph records containers and the operations that produced them.
//
// A Graph is not safe for concurrent use. Build one per training iteration,
// or Clear it between iterations.
type Graph struct {
	nodes        []node
	strictDomain bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithCapacity pre-allocates room for n nodes.
func WithCapacity(n int) Option {
	return func(g *Graph) {
		g.nodes = make([]node, 0, n)
	}
}

// WithStrictDomain makes log and power report ErrNumericDomain for arguments
// outside their domain instead of flooring them to tensor.Epsilon.
func WithStrictDomain() Option {
	return func(g *Graph) {
		g.strictDomain = true
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{nodes: make([]node, 0, 64)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of recorded nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Clear drops every node. Vars issued before Clear must not be used again.
// Storage bound with Bind is left untouched.
func (g *Graph) Clear() {
	clear(g.nodes)
	g.nodes = g.nodes[:0]
}

// Leaf records a leaf holding a copy of value.
func (g *Graph) Leaf(value *tensor.Array) Var {
	v := value.Clone()
	return g.push(node{kind: KindLeaf, value: v, grad: tensor.ZerosLike(v)})
}

// Const records a scalar leaf.
func (g *Graph) Const(x float64) Var {
	return g.Leaf(tensor.Scalar(x))
}

// Bind records a leaf that aliases external storage: the node reads value
// directly and backward accumulates straight into grad. This is how trainable
// parameters join a graph without copying.
func (g *Graph) Bind(value, grad *tensor.Array) (Var, error) {
	if !value.Shape().Equal(grad.Shape()) {
		return Var{}, &tensor.ShapeError{Op: "bind", Left: value.Shape(), Right: grad.Shape()}
	}
	return g.push(node{kind: KindLeaf, value: value, grad: grad}), nil
}

// ZeroGrad resets v's gradient accumulator to zero in place.
func (g *Graph) ZeroGrad(v Var) {
	g.check(v)
	g.nodes[v.id].grad.Zero()
}

// ZeroGrads resets every gradient accumulator in the graph.
func (g *Graph) ZeroGrads() {
	for i := range g.nodes {
		g.nodes[i].grad.Zero()
	}
}

// TopoOrder returns every node reachable from root, each one after all of
// its operands. The root is last.
func (g *Graph) TopoOrder(root Var) []Var {
	g.check(root)
	reachable := g.reachable(root.id)
	order := make([]Var, 0, root.id+1)
	for i := 0; i <= root.id; i++ {
		if reachable[i] {
			order = append(order, Var{g: g, id: i})
		}
	}
	return order
}

// reachable marks the nodes root depends on. Operands precede consumers in
// the arena, so a single downward scan is enough.
func (g *Graph) reachable(root int) []bool {
	marks := make([]bool, root+1)
	marks[root] = true
	for i := root; i >= 0; i-- {
		if !marks[i] {
			continue
		}
		n := &g.nodes[i]
		for p := 0; p < n.arity; p++ {
			marks[n.parents[p]] = true
		}
	}
	return marks
}

func (g *Graph) push(n node) Var {
	g.nodes = append(g.nodes, n)
	return Var{g: g, id: len(g.nodes) - 1}
}

// record appends an operation node after validating its operands.
func (g *Graph) record(kind Kind, value *tensor.Array, k float64, operands ...Var) Var {
	n := node{kind: kind, value: value, grad: tensor.ZerosLike(value), arity: len(operands), k: k}
	for i, op := range operands {
		n.parents[i] = op.id
	}
	return g.push(n)
}

func (g *Graph) check(vs ...Var) {
	for _, v := range vs {
		if v.g != g {
			panic("autodiff: var belongs to a different graph")
		}
		if v.id < 0 || v.id >= len(g.nodes) {
			panic(fmt.Sprintf("autodiff: invalid node id %d (graph has %d nodes)", v.id, len(g.nodes)))
		}
	}
}

// Var is a handle to a node in a Graph.
type Var struct {
	g  *Graph
	id int
}

// ID returns the node's arena index. Operands always have smaller IDs.
func (v Var) ID() int {
	return v.id
}

// Graph returns the graph v belongs to.
func (v Var) Graph() *Graph {
	return v.g
}

// Value returns the node's value. Leaf values may be mutated between
// iterations; doing so does not recompute nodes built from them.
func (v Var) Value() *tensor.Array {
	return v.g.nodes[v.id].value
}

// Grad returns the node's gradient accumulator.
func (v Var) Grad() *tensor.Array {
	return v.g.nodes[v.id].grad
}

// Shape returns the node's value shape.
func (v Var) Shape() tensor.Shape {
	return v.Value().Shape()
}

// Kind returns the operation that produced the node.
func (v Var) Kind() Kind {
	return v.g.nodes[v.id].kind
}

// IsLeaf reports whether the node has no operands.
func (v Var) IsLeaf() bool {
	return v.g.nodes[v.id].arity == 0
}

// Parents returns the node's operands in order.
func (v Var) Parents() []Var {
	n := &v.g.nodes[v.id]
	ps := make([]Var, n.arity)
	for i := range ps {
		ps[i] = Var{g: v.g, id: n.parents[i]}
	}
	return ps
}

// String describes the node for debugging.
func (v Var) String() string {
	return fmt.Sprintf("%s#%d%v", v.Kind(), v.id, v.Shape())
}

// Must unwraps an operation result, panicking on error. It is meant for
// expressions whose shapes are known to be valid.
func Must(v Var, err error) Var {
	if err != nil {
		panic(errors.Wrap(err, "autodiff"))
	}
	return v
}
