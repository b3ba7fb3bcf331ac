// Package main provides the minidiff CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/born-ml/minidiff/internal/dual"
	"github.com/born-ml/minidiff/internal/scalar"
	"github.com/born-ml/minidiff/internal/train"
	"github.com/pkg/errors"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 0
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "minidiff %s\n", version)
	case "demo":
		err = demo(stdout)
	case "train":
		err = trainCmd(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "minidiff - small automatic differentiation engines")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  demo       Differentiate y = (x+2)^2 at x = 2 in reverse and forward mode")
	fmt.Fprintln(w, "  train      Train the two-layer reference model (train -h for flags)")
}

// demo differentiates y = (x+2)² at x = 2 with the scalar tape and checks it
// against dual numbers.
func demo(w io.Writer) error {
	tape := scalar.NewTape()
	x := tape.Var(2)
	y := x.Add(tape.Const(2)).PowConst(2)
	tape.Backward(y)

	val, der := dual.Derivative(func(x dual.Number) dual.Number {
		return x.Add(dual.Constant(2)).PowConst(2)
	}, 2)

	fmt.Fprintln(w, "y = (x+2)^2 at x = 2")
	fmt.Fprintf(w, "  reverse mode: y = %g, dy/dx = %g (%d nodes)\n", y.Val(), x.Grad(), tape.Len())
	fmt.Fprintf(w, "  forward mode: y = %g, dy/dx = %g\n", val, der)
	if y.Val() != val || x.Grad() != der {
		return errors.Errorf("modes disagree: reverse %g, forward %g", x.Grad(), der)
	}
	return nil
}

func trainCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (flags override it)")
	lr := fs.Float64("lr", 0, "Learning rate")
	tol := fs.Float64("tol", 0, "Stop once the loss is below this")
	maxIter := fs.Int("max-iter", 0, "Maximum parameter updates")
	activation := fs.String("activation", "", "Hidden activation: none, relu, sigmoid, tanh")
	optimizer := fs.String("optimizer", "", "Optimizer: sgd or adam")
	seed := fs.Uint64("seed", 0, "Xavier init seed (0 keeps the reference weights)")
	logEvery := fs.Int("log-every", 0, "Progress log interval (0 disables)")
	checkpoint := fs.String("checkpoint", "", "Save the trained model to this YAML file")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := train.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = train.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lr":
			cfg.LearningRate = *lr
		case "tol":
			cfg.Tolerance = *tol
		case "max-iter":
			cfg.MaxIterations = *maxIter
		case "activation":
			cfg.Activation = *activation
		case "optimizer":
			cfg.Optimizer = *optimizer
		case "seed":
			cfg.Seed = *seed
		case "log-every":
			cfg.LogEvery = *logEvery
		case "checkpoint":
			cfg.Checkpoint = *checkpoint
		}
	})

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	logger.Debug("config", slog.Any("config", cfg))

	model, err := train.ModelFor(cfg)
	if err != nil {
		return err
	}
	trainer, err := train.NewTrainer(cfg, train.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := trainer.Run(ctx, model, train.ReferenceInputs(), train.ReferenceTargets())
	if res != nil {
		printResult(stdout, res, model)
	}
	return err
}

func printResult(w io.Writer, res *train.Result, model *train.Model) {
	fmt.Fprintf(w, "run %s\n", res.RunID)
	fmt.Fprintf(w, "  converged:  %t\n", res.Converged)
	fmt.Fprintf(w, "  iterations: %d\n", res.Iterations)
	fmt.Fprintf(w, "  final loss: %.6g\n", res.FinalLoss)
	for _, p := range model.Parameters() {
		fmt.Fprintf(w, "  %-14s %s\n", p.Name()+":", p.Value())
	}
}
