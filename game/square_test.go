package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSquare(t *testing.T) {
	t.Run("round trip over the whole board", func(t *testing.T) {
		for i := 0; i < NumSquares; i++ {
			sq := Square(i)

			got, err := ParseSquare(sq.String())

			require.NoError(t, err)
			require.Equal(t, sq, got, "Square %d should survive a round trip", i)
		}
	})

	t.Run("corner squares", func(t *testing.T) {
		require.Equal(t, Square(0), MustParseSquare("a8"))
		require.Equal(t, Square(7), MustParseSquare("h8"))
		require.Equal(t, Square(56), MustParseSquare("a1"))
		require.Equal(t, Square(63), MustParseSquare("h1"))
		require.Equal(t, Square(52), MustParseSquare("e2"))
	})

	t.Run("upper-case file", func(t *testing.T) {
		got, err := ParseSquare("E2")

		require.NoError(t, err)
		require.Equal(t, MustParseSquare("e2"), got)
	})

	t.Run("malformed tokens", func(t *testing.T) {
		for _, token := range []string{"", "e", "e22", "i1", "a0", "a9", "11"} {
			_, err := ParseSquare(token)

			require.ErrorIs(t, err, ErrMalformedSquare, "Token %q should be rejected", token)
		}
	})
}

func TestParseMove(t *testing.T) {
	t.Run("accepted forms", func(t *testing.T) {
		want := Move{From: MustParseSquare("e2"), To: MustParseSquare("e4")}
		for _, s := range []string{"e2e4", "e2 e4", "e2-e4"} {
			got, err := ParseMove(s)

			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})

	t.Run("rejected forms", func(t *testing.T) {
		for _, s := range []string{"e2", "e2e9", "e2xe4", "z2e4"} {
			_, err := ParseMove(s)

			require.ErrorIs(t, err, ErrMalformedSquare, "Move %q should be rejected", s)
		}
	})
}

func TestPiece(t *testing.T) {
	t.Run("kind and color", func(t *testing.T) {
		for _, c := range []Color{White, Black} {
			for k := King; k <= Pawn; k++ {
				p := MakePiece(k, c)

				require.Equal(t, k, p.Kind())
				require.Equal(t, c, p.Color())
				require.True(t, p.Belongs(c))
				require.False(t, p.Belongs(c.Opponent()))
			}
		}
	})

	t.Run("empty belongs to nobody", func(t *testing.T) {
		require.False(t, Empty.Belongs(White))
		require.False(t, Empty.Belongs(Black))
		require.Equal(t, NoKind, Empty.Kind())
	})
}
