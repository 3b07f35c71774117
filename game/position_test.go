package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlay(t *testing.T) {
	t.Run("quiet move", func(t *testing.T) {
		p := StartingPosition()

		child, err := p.Play(mv("e2e4"))

		require.NoError(t, err)
		require.Equal(t, Black, child.Turn(), "Side to move should alternate")
		require.Equal(t, WhitePawn, child.At(MustParseSquare("e4")))
		require.Equal(t, Empty, child.At(MustParseSquare("e2")))
		require.Equal(t, 1, child.Progress())
		last, ok := child.LastMove()
		require.True(t, ok)
		require.Equal(t, mv("e2e4"), last)
		require.Equal(t, WhitePawn, p.At(MustParseSquare("e2")), "Parent should not change")
		_, ok = p.LastMove()
		require.False(t, ok, "Starting position has no last move")
	})

	t.Run("capture resets progress and reduces material", func(t *testing.T) {
		var b Board
		b[MustParseSquare("e1")] = WhiteKing
		b[MustParseSquare("a1")] = WhiteRook
		b[MustParseSquare("a5")] = BlackKnight
		b[MustParseSquare("e8")] = BlackKing
		p := FromRecord(Record{Board: b, Turn: White, Progress: 12})

		child, err := p.Play(mv("a1a5"))

		require.NoError(t, err)
		require.Equal(t, 0, child.Progress())
		require.Equal(t, 0, child.Material(Black))
		require.Equal(t, 5, child.Material(White))
		require.Equal(t, Play, child.Status())
	})

	t.Run("bare kings draw", func(t *testing.T) {
		p := positionOf(White, map[string]Piece{"e1": WhiteKing, "e2": BlackKnight, "e8": BlackKing})

		child, err := p.Play(mv("e1e2"))

		require.NoError(t, err)
		require.Equal(t, Draw, child.Status())
		require.Equal(t, Drawn, child.Outcome())
		moves, err := child.LegalMoves()
		require.NoError(t, err)
		require.Empty(t, moves, "Drawn position should have no moves")
	})

	t.Run("fifty moves without capture", func(t *testing.T) {
		p := FromRecord(Record{Board: startingBoard(), Turn: White, Progress: FiftyMoveLimit - 1})

		child, err := p.Play(mv("g1f3"))

		require.NoError(t, err)
		require.Equal(t, Draw, child.Status())
	})

	t.Run("king move gives up castling", func(t *testing.T) {
		p := positionOf(White, map[string]Piece{"e1": WhiteKing, "e8": BlackKing})

		child, err := p.Play(mv("e1e2"))

		require.NoError(t, err)
		require.False(t, child.CanCastle(White))
		require.True(t, child.CanCastle(Black))
	})

	t.Run("capturing a king", func(t *testing.T) {
		p := positionOf(White, map[string]Piece{"a1": WhiteKing, "e2": WhiteRook, "e8": BlackKing})

		_, err := p.Play(mv("e2e8"))

		require.ErrorIs(t, err, ErrKingCaptured)
	})

	t.Run("off-board square", func(t *testing.T) {
		_, err := StartingPosition().Play(Move{From: 52, To: 64})

		require.ErrorIs(t, err, ErrMalformedSquare)
	})
}

func TestPositionMaterial(t *testing.T) {
	t.Run("starting material", func(t *testing.T) {
		p := StartingPosition()

		require.Equal(t, StartingMaterial, p.Material(White))
		require.Equal(t, StartingMaterial, p.Material(Black))
	})
}

func TestPositionHash(t *testing.T) {
	t.Run("same board and side", func(t *testing.T) {
		require.Equal(t, StartingPosition().Hash(), StartingPosition().Hash())
	})

	t.Run("side to move changes the hash", func(t *testing.T) {
		p := StartingPosition()

		require.NotEqual(t, p.Hash(), p.Flipped().Hash())
	})

	t.Run("transposed move orders agree", func(t *testing.T) {
		a := playAll(t, StartingPosition(), "g1f3", "g8f6", "b1c3")
		b := playAll(t, StartingPosition(), "b1c3", "g8f6", "g1f3")

		require.Equal(t, a.Hash(), b.Hash())
	})
}

func TestFlipped(t *testing.T) {
	t.Run("flipping does not touch the original", func(t *testing.T) {
		p := StartingPosition()
		_, err := p.LegalMoves()
		require.NoError(t, err)

		flipped := p.Flipped()
		moves, err := flipped.LegalMoves()

		require.NoError(t, err)
		require.Equal(t, Black, flipped.Turn())
		require.Equal(t, White, p.Turn())
		require.Len(t, moves, 20, "Black has the same twenty opening moves")
	})
}

func TestPositionString(t *testing.T) {
	t.Run("rendering the starting position", func(t *testing.T) {
		s := StartingPosition().String()

		require.Contains(t, s, "8 r n b q k b n r\n")
		require.Contains(t, s, "1 R N B Q K B N R\n")
		require.Contains(t, s, "white to move")
	})
}

func playAll(t *testing.T, p *Position, moves ...string) *Position {
	t.Helper()
	for _, m := range moves {
		var err error
		p, err = p.Play(mv(m))
		require.NoError(t, err)
	}
	return p
}
