package engine

import (
	"fmt"

	"github.com/Reaganak40/chessai/experiments/metrics"
	"github.com/Reaganak40/chessai/searcher"
	"github.com/Reaganak40/chessai/snapshot"
	"github.com/rs/zerolog/log"
)

type Option func(e *Engine)

// StepHook observes every completed step.
type StepHook func(step int, it searcher.Iteration)

// Engine drives the search one iteration at a time and persists the tree after each one.
type Engine struct {
	mcts   *searcher.MCTS
	store  *snapshot.Store
	hooks  []StepHook
	steps  int
	record bool

	iterations []metrics.IterationRecord
}

func WithStepHook(hook StepHook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}

// WithIterationRecords keeps a metric record of every step for IterationRecords.
func WithIterationRecords() Option {
	return func(e *Engine) {
		e.record = true
	}
}

func New(mcts *searcher.MCTS, store *snapshot.Store, options ...Option) *Engine {
	e := &Engine{
		mcts:  mcts,
		store: store,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Engine) MCTS() *searcher.MCTS {
	return e.mcts
}

// Steps returns the number of completed steps.
func (e *Engine) Steps() int {
	return e.steps
}

func (e *Engine) IterationRecords() []metrics.IterationRecord {
	return e.iterations
}

// Step runs one iteration and saves the tree. If the iteration fails, the last good tree is
// saved on a best-effort basis and the iteration's error is returned.
func (e *Engine) Step() (searcher.Iteration, error) {
	it, err := e.mcts.Iterate()
	if err != nil {
		e.rescue()
		return it, fmt.Errorf("step %d failed: %w", e.steps+1, err)
	}
	e.steps++

	if e.record {
		e.iterations = append(e.iterations, metrics.IterationRecord{
			Iteration: e.steps,
			IterationMetric: metrics.IterationMetric{
				SelectionDepth:  it.SelectionDepth,
				SimulationPlies: it.SimulationPlies,
				Outcome:         it.Outcome,
				Truncated:       it.Truncated,
			},
		})
	}
	for _, hook := range e.hooks {
		hook(e.steps, it)
	}

	if err := e.Save(); err != nil {
		return it, err
	}
	return it, nil
}

// Run takes n steps, stopping at the first failure.
func (e *Engine) Run(n int) error {
	log.Info().Msgf("running %d iterations from %d nodes...", n, e.mcts.Root().Size())
	for i := 0; i < n; i++ {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	log.Info().Msgf("completed %d iterations, tree holds %d nodes", n, e.mcts.Root().Size())
	return nil
}

// Save persists the whole tree without touching the search state.
func (e *Engine) Save() error {
	if err := e.store.Save(e.mcts.Root()); err != nil {
		return fmt.Errorf("failed to save tree: %w", err)
	}
	return nil
}

func (e *Engine) rescue() {
	if err := e.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save tree after a failed step")
		return
	}
	log.Warn().Str("path", e.store.Path()).Msg("saved last good tree after a failed step")
}
