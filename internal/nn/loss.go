package nn

import (
	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
)

// MSE records mean((pred - target)²) in g and returns the scalar loss.
//
// pred and target must have the same shape; a broadcastable target is
// rejected so a misaligned batch cannot silently average the wrong pairs.
func MSE(g *autodiff.Graph, pred, target autodiff.Var) (autodiff.Var, error) {
	sq, err := squaredError(g, pred, target)
	if err != nil {
		return autodiff.Var{}, err
	}
	return g.Mean(sq)
}

// HalfMSE records mean(0.5·(pred - target)²) in g and returns the scalar loss.
//
// The half cancels the 2 of the square's derivative, so the gradient with
// respect to pred is (pred - target) / n.
func HalfMSE(g *autodiff.Graph, pred, target autodiff.Var) (autodiff.Var, error) {
	sq, err := squaredError(g, pred, target)
	if err != nil {
		return autodiff.Var{}, err
	}
	half, err := g.Scale(sq, 0.5)
	if err != nil {
		return autodiff.Var{}, err
	}
	return g.Mean(half)
}

func squaredError(g *autodiff.Graph, pred, target autodiff.Var) (autodiff.Var, error) {
	if !pred.Shape().Equal(target.Shape()) {
		return autodiff.Var{}, &tensor.ShapeError{Op: "loss", Left: pred.Shape(), Right: target.Shape()}
	}
	diff, err := g.Sub(pred, target)
	if err != nil {
		return autodiff.Var{}, err
	}
	return g.PowConst(diff, 2)
}
