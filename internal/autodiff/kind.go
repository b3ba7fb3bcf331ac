package autodiff

// Kind identifies the operation that produced a node and selects its
// backward rule.
type Kind uint8

// Operation kinds.
const (
	KindLeaf Kind = iota
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPowConst
	KindPow
	KindMatMul
	KindLog
	KindExp
	KindSin
	KindCos
	KindTan
	KindSqrt
	KindReLU
	KindSigmoid
	KindTanh
	KindNeg
	KindScale
	KindSum
	KindMean
)

var kindNames = [...]string{
	KindLeaf:     "leaf",
	KindAdd:      "add",
	KindSub:      "sub",
	KindMul:      "mul",
	KindDiv:      "div",
	KindPowConst: "pow_const",
	KindPow:      "pow",
	KindMatMul:   "matmul",
	KindLog:      "log",
	KindExp:      "exp",
	KindSin:      "sin",
	KindCos:      "cos",
	KindTan:      "tan",
	KindSqrt:     "sqrt",
	KindReLU:     "relu",
	KindSigmoid:  "sigmoid",
	KindTanh:     "tanh",
	KindNeg:      "neg",
	KindScale:    "scale",
	KindSum:      "sum",
	KindMean:     "mean",
}

// String returns the lower-case operation name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
