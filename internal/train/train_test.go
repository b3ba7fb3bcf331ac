package train_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/born-ml/minidiff/internal/train"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrainer(t *testing.T, cfg train.Config, opts ...train.Option) *train.Trainer {
	t.Helper()
	tr, err := train.NewTrainer(cfg, opts...)
	require.NoError(t, err)
	return tr
}

func TestTrainer_LossAtReferenceWeights(t *testing.T) {
	tr := newTrainer(t, train.DefaultConfig())
	model := train.NewTwoLayerModel(nn.None)

	loss, err := tr.Loss(model, train.ReferenceInputs(), train.ReferenceTargets())
	require.NoError(t, err)
	assert.InDelta(t, 0.2526375, loss, 1e-12)

	// Loss leaves the parameters alone.
	again, err := tr.Loss(model, train.ReferenceInputs(), train.ReferenceTargets())
	require.NoError(t, err)
	assert.Equal(t, loss, again)
}

func TestTrainer_Step(t *testing.T) {
	tr := newTrainer(t, train.DefaultConfig())
	model := train.NewTwoLayerModel(nn.None)
	x, target := train.ReferenceInputs(), train.ReferenceTargets()

	before, err := tr.Step(model, x, target)
	require.NoError(t, err)
	assert.InDelta(t, 0.2526375, before, 1e-12, "Step reports the loss before its update")

	after, err := tr.Loss(model, x, target)
	require.NoError(t, err)
	assert.Less(t, after, before)

	// Every parameter received a gradient and moved.
	fresh := train.NewTwoLayerModel(nn.None)
	for i, p := range model.Parameters() {
		assert.False(t, p.Grad().Equal(tensor.ZerosLike(p.Grad())), p.Name())
		assert.False(t, p.Value().Equal(fresh.Parameters()[i].Value()), p.Name())
	}
}

func TestRun_ReferenceConverges(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.LogEvery = 0
	tr := newTrainer(t, cfg)

	res, err := tr.Run(context.Background(), train.NewTwoLayerModel(nn.None), train.ReferenceInputs(), train.ReferenceTargets())
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Less(t, res.FinalLoss, cfg.Tolerance)
	assert.InDelta(t, 561, res.Iterations, 2)
	assert.Len(t, res.Losses, res.Iterations+1)
	assert.NotEmpty(t, res.RunID)

	for i := 1; i < len(res.Losses); i++ {
		require.LessOrEqual(t, res.Losses[i], res.Losses[i-1]+1e-12, "loss increased at iteration %d", i)
	}
}

func TestRun_Activations(t *testing.T) {
	tests := []struct {
		act     nn.Activation
		maxIter int
	}{
		{nn.ReLU, 1000},
		{nn.Sigmoid, 4000},
		{nn.Tanh, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.act.String(), func(t *testing.T) {
			cfg := train.DefaultConfig()
			cfg.Activation = tt.act.String()
			model, err := train.ModelFor(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.act, model.Activation)

			res, err := newTrainer(t, cfg).Run(context.Background(), model, train.ReferenceInputs(), train.ReferenceTargets())
			require.NoError(t, err)
			assert.True(t, res.Converged)
			assert.Less(t, res.Iterations, tt.maxIter)
		})
	}
}

func TestRun_NotConverged(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.MaxIterations = 10
	tr := newTrainer(t, cfg)

	res, err := tr.Run(context.Background(), train.NewTwoLayerModel(nn.None), train.ReferenceInputs(), train.ReferenceTargets())
	require.ErrorIs(t, err, train.ErrNotConverged)
	require.NotNil(t, res)

	assert.False(t, res.Converged)
	assert.Equal(t, 10, res.Iterations)
	assert.Len(t, res.Losses, 11)
	assert.Equal(t, res.Losses[10], res.FinalLoss)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := train.NewTwoLayerModel(nn.None)
	res, err := newTrainer(t, train.DefaultConfig()).Run(ctx, model, train.ReferenceInputs(), train.ReferenceTargets())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Iterations)
	assert.True(t, model.Parameters()[0].Value().Equal(train.NewTwoLayerModel(nn.None).Parameters()[0].Value()))
}

func TestRun_ShapeMismatch(t *testing.T) {
	tr := newTrainer(t, train.DefaultConfig())
	_, err := tr.Run(context.Background(), train.NewTwoLayerModel(nn.None),
		train.ReferenceInputs(), tensor.Zeros(tensor.Shape{3, 3}))
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestRun_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := train.DefaultConfig()
	cfg.LogEvery = 100
	tr := newTrainer(t, cfg, train.WithLogger(logger))

	res, err := tr.Run(context.Background(), train.NewTwoLayerModel(nn.None), train.ReferenceInputs(), train.ReferenceTargets())
	require.NoError(t, err)

	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, res.RunID, rec["run_id"])
		msgs = append(msgs, rec["msg"].(string))
	}

	require.NotEmpty(t, msgs)
	assert.Equal(t, "training started", msgs[0])
	assert.Equal(t, "training converged", msgs[len(msgs)-1])
	assert.Len(t, msgs, 2+res.Iterations/100)
}

func TestRun_Checkpoint(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.Checkpoint = filepath.Join(t.TempDir(), "model.yaml")
	model := train.NewTwoLayerModel(nn.None)

	res, err := newTrainer(t, cfg).Run(context.Background(), model, train.ReferenceInputs(), train.ReferenceTargets())
	require.NoError(t, err)

	restored := train.NewTwoLayerModel(nn.None)
	ckpt, err := nn.LoadCheckpoint(cfg.Checkpoint, restored)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, ckpt.RunID)
	assert.Equal(t, res.Iterations, ckpt.Iteration)
	assert.Equal(t, "none", ckpt.Metadata["activation"])

	for i, p := range restored.Parameters() {
		assert.True(t, p.Value().Equal(model.Parameters()[i].Value()), p.Name())
	}

	// The restored model is already trained.
	loss, err := newTrainer(t, train.DefaultConfig()).Loss(restored, train.ReferenceInputs(), train.ReferenceTargets())
	require.NoError(t, err)
	assert.Less(t, loss, cfg.Tolerance)
}

func TestRun_Adam(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.Optimizer = "adam"
	cfg.LearningRate = 0.01
	cfg.MaxIterations = 200

	res, err := newTrainer(t, cfg).Run(context.Background(), train.NewTwoLayerModel(nn.None), train.ReferenceInputs(), train.ReferenceTargets())
	if err != nil {
		require.ErrorIs(t, err, train.ErrNotConverged)
	}
	assert.Less(t, res.FinalLoss, res.Losses[0])
}

func TestModelFor_Seed(t *testing.T) {
	cfg := train.DefaultConfig()
	cfg.Seed = 42

	a, err := train.ModelFor(cfg)
	require.NoError(t, err)
	b, err := train.ModelFor(cfg)
	require.NoError(t, err)
	ref := train.NewTwoLayerModel(nn.None)

	for i, p := range a.Parameters() {
		assert.True(t, p.Value().Equal(b.Parameters()[i].Value()), "same seed, same %s", p.Name())
	}
	assert.False(t, a.Layer1.Weight().Value().Equal(ref.Layer1.Weight().Value()))

	cfg.Activation = "swish"
	_, err = train.ModelFor(cfg)
	assert.ErrorIs(t, err, nn.ErrUnknownActivation)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, train.DefaultConfig().Validate())

	tests := []struct {
		name   string
		modify func(*train.Config)
	}{
		{"zero learning rate", func(c *train.Config) { c.LearningRate = 0 }},
		{"negative tolerance", func(c *train.Config) { c.Tolerance = -1 }},
		{"zero max iterations", func(c *train.Config) { c.MaxIterations = 0 }},
		{"negative log interval", func(c *train.Config) { c.LogEvery = -1 }},
		{"momentum of one", func(c *train.Config) { c.Momentum = 1 }},
		{"unknown activation", func(c *train.Config) { c.Activation = "gelu" }},
		{"unknown optimizer", func(c *train.Config) { c.Optimizer = "rmsprop" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := train.DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), train.ErrInvalidConfig)

			_, err := train.NewTrainer(cfg)
			assert.ErrorIs(t, err, train.ErrInvalidConfig)
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := train.ParseConfig([]byte("learning_rate: 0.3\nactivation: sigmoid\n"))
	require.NoError(t, err)

	want := train.DefaultConfig()
	want.LearningRate = 0.3
	want.Activation = "sigmoid"
	assert.Equal(t, want, cfg)

	cfg, err = train.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, train.DefaultConfig(), cfg)

	_, err = train.ParseConfig([]byte("learning_rat: 0.3\n"))
	require.Error(t, err, "unknown keys are rejected")

	_, err = train.ParseConfig([]byte("max_iterations: -5\n"))
	assert.ErrorIs(t, err, train.ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
learning_rate: 0.05
tolerance: 1e-6
max_iterations: 5000
optimizer: sgd
momentum: 0.5
seed: 7
strict_domain: true
`), 0o600))

	cfg, err := train.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Equal(t, 1e-6, cfg.Tolerance)
	assert.Equal(t, 5000, cfg.MaxIterations)
	assert.Equal(t, 0.5, cfg.Momentum)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.True(t, cfg.StrictDomain)
	assert.Equal(t, "none", cfg.Activation, "missing keys keep defaults")
	assert.Equal(t, 1000, cfg.LogEvery)

	_, err = train.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
