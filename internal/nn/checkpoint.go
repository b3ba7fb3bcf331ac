package nn

import (
	"os"
	"time"

	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrNotCheckpoint is returned when a file does not hold a checkpoint.
var ErrNotCheckpoint = errors.New("file is not a checkpoint")

// checkpointKind tags checkpoint files.
const checkpointKind = "minidiff/checkpoint"

// Checkpoint represents a training state snapshot.
//
// A checkpoint includes:
//   - Model parameters (weights and biases) via Module.StateDict
//   - Training metadata (run id, iteration, loss)
//   - Custom string metadata
//
// Checkpoints are plain YAML so they can be inspected and diffed.
//
// Example:
//
//	ckpt := &nn.Checkpoint{Model: model, Iteration: 1200, Loss: 9.8e-6}
//	err := ckpt.Save("model.yaml")
//
// To restore:
//
//	ckpt, err := nn.LoadCheckpoint("model.yaml", model)
type Checkpoint struct {
	Model     Module            // The model whose parameters are saved or restored
	RunID     string            // Training run identifier
	Iteration int               // Iterations completed
	Loss      float64           // Loss value at this checkpoint
	Metadata  map[string]string // Additional training metadata
	CreatedAt time.Time         // When the checkpoint was created
}

type checkpointFile struct {
	Kind      string                  `yaml:"kind"`
	RunID     string                  `yaml:"run_id,omitempty"`
	Iteration int                     `yaml:"iteration"`
	Loss      float64                 `yaml:"loss"`
	CreatedAt time.Time               `yaml:"created_at"`
	Metadata  map[string]string       `yaml:"metadata,omitempty"`
	Params    map[string]arrayPayload `yaml:"params"`
}

type arrayPayload struct {
	Shape []int     `yaml:"shape,flow"`
	Data  []float64 `yaml:"data,flow"`
}

// Save writes the checkpoint to path, replacing any existing file.
func (c *Checkpoint) Save(path string) error {
	if c.Model == nil {
		return errors.New("checkpoint has no model")
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	f := checkpointFile{
		Kind:      checkpointKind,
		RunID:     c.RunID,
		Iteration: c.Iteration,
		Loss:      c.Loss,
		CreatedAt: created,
		Metadata:  c.Metadata,
		Params:    make(map[string]arrayPayload),
	}
	for name, a := range c.Model.StateDict() {
		f.Params[name] = arrayPayload{Shape: a.Shape().Clone(), Data: append([]float64(nil), a.Data()...)}
	}

	out, err := yaml.Marshal(&f)
	if err != nil {
		return errors.Wrap(err, "failed to encode checkpoint")
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errors.Wrap(err, "failed to write checkpoint")
	}
	return nil
}

// LoadCheckpoint reads a checkpoint from path and loads its parameters into
// model. The model must have the same architecture as the one saved.
func LoadCheckpoint(path string, model Module) (*Checkpoint, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller
	if err != nil {
		return nil, errors.Wrap(err, "failed to read checkpoint")
	}

	var f checkpointFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to decode checkpoint %s", path)
	}
	if f.Kind != checkpointKind {
		return nil, errors.Wrapf(ErrNotCheckpoint, "%s", path)
	}

	stateDict := make(map[string]*tensor.Array, len(f.Params))
	for name, p := range f.Params {
		a, err := tensor.New(tensor.Shape(p.Shape), p.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", name)
		}
		stateDict[name] = a
	}
	if err := model.LoadStateDict(stateDict); err != nil {
		return nil, err
	}

	return &Checkpoint{
		Model:     model,
		RunID:     f.RunID,
		Iteration: f.Iteration,
		Loss:      f.Loss,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt,
	}, nil
}
