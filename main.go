package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/Reaganak40/chessai/config"
	"github.com/Reaganak40/chessai/engine"
	"github.com/Reaganak40/chessai/experiments"
	"github.com/Reaganak40/chessai/experiments/metrics"
	"github.com/Reaganak40/chessai/game"
	"github.com/Reaganak40/chessai/searcher"
	"github.com/Reaganak40/chessai/shell"
	"github.com/Reaganak40/chessai/snapshot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const progressEvery = 100

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cfg config.Config
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())

	var dump bytes.Buffer
	if err := cfg.Dump(&dump); err == nil {
		log.Debug().Msg("configuration:\n" + dump.String())
	}

	options := []searcher.Option{
		searcher.WithExploration(cfg.Exploration),
		searcher.WithExpansionDenominator(cfg.ExpansionDenominator),
		searcher.WithSimulationDenominator(cfg.SimulationDenominator),
		searcher.WithMaxPlies(cfg.MaxPlies),
		searcher.WithSeed(cfg.Seed),
	}

	start, err := startingPosition(cfg.FEN)
	if err != nil {
		log.Fatal().Err(err).Msg("bad starting position")
	}

	if cfg.SelfPlay.Games > 0 {
		_, err := experiments.RunSelfPlay(experiments.SelfPlayConfig{
			Games:             cfg.SelfPlay.Games,
			IterationsPerMove: cfg.SelfPlay.IterationsPerMove,
			MaxGamePlies:      cfg.SelfPlay.MaxGamePlies,
			Start:             start,
			Options:           options,
			Dir:               filepath.Join(cfg.SaveDir, "selfplay"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("self-play failed")
		}
		return
	}

	store := snapshot.NewStore(cfg.SaveDir, cfg.SnapshotName)
	root, err := store.Load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Msgf("no snapshot at %s, starting a new tree", store.Path())
		root = searcher.NewRoot(start)
	case err != nil:
		log.Fatal().Err(err).Msg("failed to load snapshot")
	case cfg.FEN != "":
		log.Warn().Msg("ignoring --fen, continuing the saved tree")
	}

	mcts := searcher.NewMCTS(root, options...)
	log.Info().Uint64("seed", mcts.Seed()).Int("nodes", root.Size()).Msg("search ready")

	var engineOptions []engine.Option
	if cfg.MetricsDir != "" {
		engineOptions = append(engineOptions, engine.WithIterationRecords())
	}
	if !cfg.Interactive {
		engineOptions = append(engineOptions, engine.WithStepHook(func(step int, it searcher.Iteration) {
			if step%progressEvery == 0 {
				log.Info().Msgf("iteration %d, tree holds %d nodes", step, root.Size())
			}
		}))
	}
	e := engine.New(mcts, store, engineOptions...)

	if cfg.Interactive {
		sc, err := shell.NewShellController(e, cfg.HistoryFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start shell")
		}
		err = sc.Loop()
		writeMetrics(cfg.MetricsDir, e)
		if err != nil {
			log.Fatal().Err(err).Msg("search aborted")
		}
		return
	}

	err = e.Run(cfg.Iterations)
	writeMetrics(cfg.MetricsDir, e)
	if err != nil {
		log.Fatal().Err(err).Msg("search aborted")
	}
}

func startingPosition(fen string) (*game.Position, error) {
	if fen == "" {
		return game.StartingPosition(), nil
	}
	return game.PositionFromFEN(fen)
}

func writeMetrics(dir string, e *engine.Engine) {
	if dir == "" {
		return
	}
	writer, err := metrics.NewWriter(dir)
	if err != nil {
		log.Error().Err(err).Msg("failed to create metrics writer")
		return
	}
	if err := writer.WriteIterationRecords(e.IterationRecords()); err != nil {
		log.Error().Err(err).Msg("failed to write iteration records")
		return
	}
	log.Info().Msgf("stored %d iteration records in %s", len(e.IterationRecords()), writer.Dir())
}
