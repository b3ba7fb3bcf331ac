package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(layer1, nn.Sigmoid, layer2)
//	out, err := model.Forward(g, x)
//
// This is equivalent to:
//
//	h1, _ := layer1.Forward(g, x)
//	h2, _ := nn.Sigmoid.Forward(g, h1)
//	out, _ := layer2.Forward(g, h2)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(g *autodiff.Graph, x autodiff.Var) (autodiff.Var, error) {
	out := x
	for i, m := range s.modules {
		var err error
		if out, err = m.Forward(g, out); err != nil {
			return autodiff.Var{}, errors.WithMessagef(err, "module %d", i)
		}
	}
	return out, nil
}

// Parameters returns all trainable parameters from all modules, in order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(m Module) {
	s.modules = append(s.modules, m)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns every module's parameters, prefixed with the module
// index ("0.weight", "0.bias", "2.weight", ...).
func (s *Sequential) StateDict() map[string]*tensor.Array {
	stateDict := make(map[string]*tensor.Array)
	for i, m := range s.modules {
		for name, a := range m.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = a
		}
	}
	return stateDict
}

// LoadStateDict loads parameters keyed as StateDict produces them.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.Array) error {
	for i, m := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		sub := make(map[string]*tensor.Array)
		for key, a := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				sub[name] = a
			}
		}
		if len(m.Parameters()) == 0 {
			continue
		}
		if err := m.LoadStateDict(sub); err != nil {
			return errors.Wrapf(err, "load module %d", i)
		}
	}
	return nil
}
