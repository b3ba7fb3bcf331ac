// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs gradient descent on the two-layer reference model.
//
// Example:
//
//	cfg := train.DefaultConfig()
//	model, _ := train.ModelFor(cfg)
//	trainer, _ := train.NewTrainer(cfg, train.WithLogger(slog.Default()))
//	res, err := trainer.Run(ctx, model, train.ReferenceInputs(), train.ReferenceTargets())
package train

import (
	"log/slog"

	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/born-ml/minidiff/internal/train"
)

// Config controls a training run.
type Config = train.Config

// DefaultConfig returns the reference training setup.
func DefaultConfig() Config {
	return train.DefaultConfig()
}

// LoadConfig reads a YAML config file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return train.LoadConfig(path)
}

// ErrInvalidConfig is returned for out-of-range settings.
var ErrInvalidConfig = train.ErrInvalidConfig

// Model is the two-layer network Z = W2·f(W1·X + b1) + b2.
type Model = train.Model

// NewTwoLayerModel returns the reference model.
func NewTwoLayerModel(act nn.Activation) *Model {
	return train.NewTwoLayerModel(act)
}

// ModelFor builds the model cfg describes.
func ModelFor(cfg Config) (*Model, error) {
	return train.ModelFor(cfg)
}

// Trainer runs training iterations.
type Trainer = train.Trainer

// Option configures a Trainer.
type Option = train.Option

// Result summarizes a training run.
type Result = train.Result

// ErrNotConverged is returned when MaxIterations is reached first.
var ErrNotConverged = train.ErrNotConverged

// NewTrainer validates cfg and returns a Trainer.
func NewTrainer(cfg Config, opts ...Option) (*Trainer, error) {
	return train.NewTrainer(cfg, opts...)
}

// WithLogger sets the trainer's logger.
func WithLogger(l *slog.Logger) Option {
	return train.WithLogger(l)
}

// ReferenceInputs returns the reference input matrix, one sample per column.
func ReferenceInputs() *tensor.Array {
	return train.ReferenceInputs()
}

// ReferenceTargets returns the reference target matrix.
func ReferenceTargets() *tensor.Array {
	return train.ReferenceTargets()
}
