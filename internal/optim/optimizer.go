// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read each parameter's gradient accumulator and update its value
// in place, so a graph that bound the parameters sees no change until it is
// rebuilt.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
//
//	for range iterations {
//	    g := autodiff.New()
//	    loss, _ := buildLoss(g, model)
//	    optimizer.ZeroGrad()
//	    _ = g.Backward(loss)
//	    optimizer.Step()
//	}
package optim

import (
	"github.com/born-ml/minidiff/internal/nn"
	"github.com/pkg/errors"
)

// ErrUnknownOptimizer is returned by New for unrecognized optimizer names.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter from its current gradient.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// Call it before each backward pass; backward accumulates.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Config selects and configures an optimizer by name.
type Config struct {
	Name     string  // "sgd" (default) or "adam"
	LR       float64 // Learning rate
	Momentum float64 // SGD momentum factor
}

// New builds the optimizer named in cfg for params.
func New(params []*nn.Parameter, cfg Config) (Optimizer, error) {
	switch cfg.Name {
	case "", "sgd":
		return NewSGD(params, SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case "adam":
		return NewAdam(params, AdamConfig{LR: cfg.LR}), nil
	default:
		return nil, errors.Wrapf(ErrUnknownOptimizer, "%q", cfg.Name)
	}
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
