package agent

import (
	"errors"
	"fmt"

	"github.com/Reaganak40/chessai/game"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

var ErrPolicyFailure = errors.New("policy could not suggest a move")

// Heuristic is the default policy used for tie-breaking, expansion and playouts.
type Heuristic struct {
	rng *rand.Rand
}

func NewHeuristic(rng *rand.Rand) *Heuristic {
	return &Heuristic{rng: rng}
}

// candidate is what one ply of lookahead learns about a move.
type candidate struct {
	move game.Move
	// Material left to the opponent after the move; lower is better
	opponentMaterial int
	// Replies available to the mover if it were to move again; higher is better
	mobility int
}

// Suggest picks one of moves, which must be legal in pos.
//
// randomDenominator sets the exploration rate: a uniformly random move is returned with
// probability randomDenominator/(randomDenominator+1), so 0 is fully deterministic and larger
// values are more random. The deterministic choice prefers a move that ends the game, then the
// move leaving the opponent the least material, then the move leaving the mover the most replies.
func (h *Heuristic) Suggest(pos *game.Position, moves []game.Move, randomDenominator int) (game.Move, error) {
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("no legal moves in %v position: %w", pos.Status(), ErrPolicyFailure)
	}
	if randomDenominator > 0 && h.rng.Intn(randomDenominator+1) != 0 {
		return moves[h.rng.Intn(len(moves))], nil
	}

	candidates := make([]candidate, 0, len(moves))
	for _, move := range moves {
		c, decisive, err := h.probe(pos, move)
		if err != nil {
			// The move could not be evaluated; playing it is still legal.
			log.Debug().Err(err).Str("move", move.String()).Msg("probe failed, falling back")
			return move, nil
		}
		if decisive {
			return move, nil
		}
		candidates = append(candidates, c)
	}

	least := lo.MinBy(candidates, func(a, b candidate) bool {
		return a.opponentMaterial < b.opponentMaterial
	}).opponentMaterial
	minimizers := lo.Filter(candidates, func(c candidate, _ int) bool {
		return c.opponentMaterial == least
	})
	if len(minimizers) == 1 {
		return minimizers[0].move, nil
	}
	return lo.MaxBy(minimizers, func(a, b candidate) bool {
		return a.mobility > b.mobility
	}).move, nil
}

// probe plays move on a scratch position. decisive is true when the opponent is left without
// replies, i.e. the move mates or stalemates.
func (h *Heuristic) probe(pos *game.Position, move game.Move) (candidate, bool, error) {
	scratch, err := pos.Play(move)
	if err != nil {
		return candidate{}, false, err
	}
	replies, err := scratch.LegalMoves()
	if err != nil {
		return candidate{}, false, err
	}
	if len(replies) == 0 {
		return candidate{}, true, nil
	}

	followUps, err := scratch.Flipped().LegalMoves()
	if err != nil {
		return candidate{}, false, err
	}
	return candidate{
		move:             move,
		opponentMaterial: scratch.Material(scratch.Turn()),
		mobility:         len(followUps),
	}, false, nil
}
