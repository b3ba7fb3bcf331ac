package train

import (
	"bytes"
	"io"
	"os"

	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/optim"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate and LoadConfig for out-of-range
// settings.
var ErrInvalidConfig = errors.New("invalid training config")

// Config controls a training run.
type Config struct {
	LearningRate  float64 `yaml:"learning_rate"`
	Tolerance     float64 `yaml:"tolerance"`      // Stop once the loss is below this
	MaxIterations int     `yaml:"max_iterations"` // Parameter updates before giving up
	Activation    string  `yaml:"activation"`     // Hidden-layer activation: none, relu, sigmoid, tanh
	Optimizer     string  `yaml:"optimizer"`      // sgd or adam
	Momentum      float64 `yaml:"momentum"`       // SGD momentum, 0 for plain gradient descent
	LogEvery      int     `yaml:"log_every"`      // Progress log interval in iterations, 0 disables
	Seed          uint64  `yaml:"seed"`           // 0 keeps the reference weights, otherwise Xavier init
	StrictDomain  bool    `yaml:"strict_domain"`  // Fail on log/pow domain errors instead of flooring
	Checkpoint    string  `yaml:"checkpoint"`     // Path to save the trained model, empty to skip
}

// DefaultConfig returns the reference training setup: plain gradient descent
// at learning rate 0.1 until the loss drops below 1e-5.
func DefaultConfig() Config {
	return Config{
		LearningRate:  0.1,
		Tolerance:     1e-5,
		MaxIterations: 100000,
		Activation:    nn.None.String(),
		Optimizer:     "sgd",
		LogEvery:      1000,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case !(c.LearningRate > 0):
		return errors.Wrapf(ErrInvalidConfig, "learning_rate must be positive, got %g", c.LearningRate)
	case !(c.Tolerance > 0):
		return errors.Wrapf(ErrInvalidConfig, "tolerance must be positive, got %g", c.Tolerance)
	case c.MaxIterations <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max_iterations must be positive, got %d", c.MaxIterations)
	case c.LogEvery < 0:
		return errors.Wrapf(ErrInvalidConfig, "log_every must not be negative, got %d", c.LogEvery)
	case c.Momentum < 0 || c.Momentum >= 1:
		return errors.Wrapf(ErrInvalidConfig, "momentum must be in [0, 1), got %g", c.Momentum)
	}
	if _, err := nn.ParseActivation(c.Activation); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := optim.New(nil, c.optimConfig()); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

func (c Config) optimConfig() optim.Config {
	return optim.Config{Name: c.Optimizer, LR: c.LearningRate, Momentum: c.Momentum}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig values; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config")
	}
	return ParseConfig(raw)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(raw []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
