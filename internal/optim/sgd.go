package optim

import (
	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/tensor"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter]*tensor.Array
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter]*tensor.Array),
	}
}

// Step applies one update to every parameter in place.
func (s *SGD) Step() {
	for _, param := range s.params {
		if s.momentum == 0 {
			mustSameShape(param.Value().AXPYInPlace(-s.lr, param.Grad()))
			continue
		}

		velocity, ok := s.velocities[param]
		if !ok {
			velocity = tensor.ZerosLike(param.Value())
			s.velocities[param] = velocity
		}
		v := velocity.Data()
		for i, g := range param.Grad().Data() {
			v[i] = s.momentum*v[i] + g
		}
		mustSameShape(param.Value().AXPYInPlace(-s.lr, velocity))
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// mustSameShape panics on an error from an in-place update. A parameter and
// its gradient share a shape from construction on.
func mustSameShape(err error) {
	if err != nil {
		panic(err)
	}
}
