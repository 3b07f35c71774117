package experiments

import (
	"fmt"
	"slices"
	"time"

	"github.com/Reaganak40/chessai/experiments/metrics"
	"github.com/Reaganak40/chessai/game"
	"github.com/Reaganak40/chessai/meta"
	"github.com/Reaganak40/chessai/searcher"
	"github.com/rs/zerolog/log"
)

type SelfPlayConfig struct {
	Games             int
	IterationsPerMove int
	MaxGamePlies      int               // a game reaching this many plies is a draw
	Start             *game.Position    // defaults to the starting position
	Options           []searcher.Option // applied to the search of every game
	Dir               string            // results go to a timestamped folder below Dir
}

func (c SelfPlayConfig) withDefaults() SelfPlayConfig {
	if c.Games <= 0 {
		c.Games = meta.SELF_PLAY_GAMES
	}
	if c.IterationsPerMove <= 0 {
		c.IterationsPerMove = meta.ITERATIONS_PER_MOVE
	}
	if c.MaxGamePlies <= 0 {
		c.MaxGamePlies = meta.MAX_GAME_PLIES
	}
	if c.Start == nil {
		c.Start = game.StartingPosition()
	}
	if c.Dir == "" {
		c.Dir = meta.SAVE_DIR
	}
	return c
}

// RunSelfPlay plays games where both sides pick the most visited move after a fixed number of
// iterations. Game and move records are written as CSV, and every game as PGN.
func RunSelfPlay(config SelfPlayConfig) ([]metrics.GameRecord, error) {
	config = config.withDefaults()
	writer, err := metrics.NewWriter(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}

	log.Info().Msgf("starting self-play with %d games of %d iterations per move...", config.Games, config.IterationsPerMove)

	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	for id := 1; id <= config.Games; id++ {
		log.Info().Msgf("starting game %d of %d...", id, config.Games)

		gameMetric, moveMetrics, moves, err := runGame(config)
		if err != nil {
			return gameRecords, fmt.Errorf("game %d: %w", id, err)
		}
		gameRecords = append(gameRecords, metrics.GameRecord{ID: id, GameMetric: gameMetric})
		for _, mm := range moveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{Game: id, MoveMetric: mm})
		}

		pgn, err := game.ExportPGN(config.Start, moves, gameMetric.Outcome)
		if err != nil {
			log.Warn().Err(err).Msgf("game %d PGN is incomplete", id)
		}
		if err := writer.WriteGame(id, pgn); err != nil {
			return gameRecords, err
		}

		log.Info().Msgf("completed game %d of %d with outcome %s after %d plies", id, config.Games, gameMetric.Outcome, gameMetric.Plies)
	}

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return gameRecords, err
	}
	log.Info().Msg("stored game records")
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return gameRecords, err
	}
	log.Info().Msg("stored move records")

	return gameRecords, nil
}

// runGame plays one game on a fresh tree, reusing the subtree below each played move.
func runGame(config SelfPlayConfig) (metrics.GameMetric, []metrics.MoveMetric, []game.Move, error) {
	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	options := append(slices.Clone(config.Options), searcher.WithMetrics(metrics.NewCollector()))
	mcts := searcher.NewMCTS(searcher.NewRoot(config.Start), options...)

	var moveMetrics []metrics.MoveMetric
	var moves []game.Move
	for {
		position := mcts.Resume().Position()
		legal, err := position.LegalMoves()
		if err != nil {
			return gameMetric, moveMetrics, moves, err
		}
		if len(legal) == 0 {
			gameMetric.Outcome = position.Outcome()
			break
		}
		if len(moves) >= config.MaxGamePlies {
			gameMetric.Outcome = game.Drawn
			break
		}

		searchMetric, err := mcts.Search(config.IterationsPerMove)
		if err != nil {
			return gameMetric, moveMetrics, moves, err
		}
		move, err := mcts.BestMove()
		if err != nil {
			return gameMetric, moveMetrics, moves, err
		}
		child, _ := mcts.Resume().Child(move)
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Ply:          len(moves) + 1,
			Player:       position.Turn(),
			Move:         move,
			Visits:       child.Visits(),
			SearchMetric: searchMetric,
		})
		log.Debug().Msgf("ply %d: %v plays %v with %d visits", len(moves)+1, position.Turn(), move, child.Visits())

		if err := mcts.Advance(move); err != nil {
			return gameMetric, moveMetrics, moves, err
		}
		moves = append(moves, move)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Plies = len(moves)
	return gameMetric, moveMetrics, moves, nil
}
