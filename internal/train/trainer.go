// Package train runs gradient descent on a two-layer model.
//
// Each iteration rebuilds the forward graph from the current parameter
// values, evaluates the half mean-squared-error loss, zeroes the parameter
// gradients, runs backward from the loss and applies the optimizer update in
// place. The loop stops when the loss drops below Config.Tolerance or after
// Config.MaxIterations updates.
package train

import (
	"context"
	"log/slog"
	"time"

	"github.com/born-ml/minidiff/internal/autodiff"
	"github.com/born-ml/minidiff/internal/nn"
	"github.com/born-ml/minidiff/internal/optim"
	"github.com/born-ml/minidiff/internal/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotConverged is returned by Run when MaxIterations updates did not bring
// the loss below the tolerance. The accompanying Result is still valid.
var ErrNotConverged = errors.New("training did not converge")

// Result summarizes a training run.
type Result struct {
	RunID      string        // Unique id, also attached to every log record
	Iterations int           // Parameter updates applied
	FinalLoss  float64       // Loss at the last evaluation
	Losses     []float64     // Loss at every evaluation, in order
	Converged  bool          // FinalLoss < Config.Tolerance
	Duration   time.Duration // Wall time of the run
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger for progress records. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

// Trainer owns the per-iteration graph and the optimizer state.
// A Trainer is not safe for concurrent use.
type Trainer struct {
	cfg    Config
	logger *slog.Logger
	graph  *autodiff.Graph

	model     *Model
	optimizer optim.Optimizer
}

// NewTrainer validates cfg and returns a Trainer.
func NewTrainer(cfg Config, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	graphOpts := []autodiff.Option{autodiff.WithCapacity(32)}
	if cfg.StrictDomain {
		graphOpts = append(graphOpts, autodiff.WithStrictDomain())
	}
	t := &Trainer{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		graph:  autodiff.New(graphOpts...),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns the trainer's configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Step runs one full iteration on model and returns the loss evaluated
// before the update.
func (t *Trainer) Step(model *Model, x, target *tensor.Array) (float64, error) {
	lossVar, err := t.forward(model, x, target)
	if err != nil {
		return 0, err
	}
	if err := t.update(model, lossVar); err != nil {
		return 0, err
	}
	return lossVar.Value().Item(), nil
}

// Loss evaluates the loss without touching gradients or parameters.
func (t *Trainer) Loss(model *Model, x, target *tensor.Array) (float64, error) {
	lossVar, err := t.forward(model, x, target)
	if err != nil {
		return 0, err
	}
	return lossVar.Value().Item(), nil
}

// forward rebuilds the graph from the current parameter values and records
// the loss.
func (t *Trainer) forward(model *Model, x, target *tensor.Array) (autodiff.Var, error) {
	g := t.graph
	g.Clear()

	z, err := model.Forward(g, g.Leaf(x))
	if err != nil {
		return autodiff.Var{}, errors.WithMessage(err, "forward")
	}
	loss, err := nn.HalfMSE(g, z, g.Leaf(target))
	if err != nil {
		return autodiff.Var{}, errors.WithMessage(err, "loss")
	}
	return loss, nil
}

// update zeroes the gradients, runs backward from loss and steps the
// optimizer.
func (t *Trainer) update(model *Model, loss autodiff.Var) error {
	opt, err := t.optimizerFor(model)
	if err != nil {
		return err
	}
	opt.ZeroGrad()
	if err := t.graph.Backward(loss); err != nil {
		return errors.WithMessage(err, "backward")
	}
	opt.Step()
	return nil
}

// optimizerFor returns the optimizer bound to model's parameters, creating
// it when the model changes.
func (t *Trainer) optimizerFor(model *Model) (optim.Optimizer, error) {
	if t.model == model && t.optimizer != nil {
		return t.optimizer, nil
	}
	opt, err := optim.New(model.Parameters(), t.cfg.optimConfig())
	if err != nil {
		return nil, err
	}
	t.model, t.optimizer = model, opt
	return opt, nil
}

// Run trains model on (x, target) until the loss is below the tolerance.
//
// The loss is checked before each update, so a converged run applies
// Iterations updates and evaluates the loss Iterations+1 times. ctx is
// checked between iterations. Hitting MaxIterations returns the Result
// together with ErrNotConverged.
func (t *Trainer) Run(ctx context.Context, model *Model, x, target *tensor.Array) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := t.logger.With(slog.String("run_id", res.RunID))
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	log.Info("training started",
		slog.Float64("learning_rate", t.cfg.LearningRate),
		slog.Float64("tolerance", t.cfg.Tolerance),
		slog.Int("max_iterations", t.cfg.MaxIterations),
		slog.String("activation", model.Activation.String()),
		slog.String("optimizer", t.cfg.Optimizer),
	)

	for {
		if err := ctx.Err(); err != nil {
			log.Warn("training cancelled", slog.Int("iteration", res.Iterations), slog.Float64("loss", res.FinalLoss))
			return res, err
		}

		lossVar, err := t.forward(model, x, target)
		if err != nil {
			return res, errors.Wrapf(err, "iteration %d", res.Iterations)
		}
		loss := lossVar.Value().Item()
		res.Losses = append(res.Losses, loss)
		res.FinalLoss = loss

		if loss < t.cfg.Tolerance {
			res.Converged = true
			break
		}
		if res.Iterations >= t.cfg.MaxIterations {
			break
		}

		if err := t.update(model, lossVar); err != nil {
			return res, errors.Wrapf(err, "iteration %d", res.Iterations)
		}
		res.Iterations++

		if t.cfg.LogEvery > 0 && res.Iterations%t.cfg.LogEvery == 0 {
			log.Info("training progress", slog.Int("iteration", res.Iterations), slog.Float64("loss", loss))
		}
	}

	if err := t.saveCheckpoint(res, model); err != nil {
		return res, err
	}

	if !res.Converged {
		log.Warn("training stopped", slog.Int("iteration", res.Iterations), slog.Float64("loss", res.FinalLoss))
		return res, errors.Wrapf(ErrNotConverged, "loss %g after %d iterations", res.FinalLoss, res.Iterations)
	}
	log.Info("training converged", slog.Int("iteration", res.Iterations), slog.Float64("loss", res.FinalLoss))
	return res, nil
}

func (t *Trainer) saveCheckpoint(res *Result, model *Model) error {
	if t.cfg.Checkpoint == "" {
		return nil
	}
	ckpt := &nn.Checkpoint{
		Model:     model,
		RunID:     res.RunID,
		Iteration: res.Iterations,
		Loss:      res.FinalLoss,
		Metadata: map[string]string{
			"activation": model.Activation.String(),
			"optimizer":  t.cfg.Optimizer,
		},
	}
	if err := ckpt.Save(t.cfg.Checkpoint); err != nil {
		return errors.Wrapf(err, "save checkpoint %s", t.cfg.Checkpoint)
	}
	t.logger.Info("checkpoint saved", slog.String("run_id", res.RunID), slog.String("path", t.cfg.Checkpoint))
	return nil
}
