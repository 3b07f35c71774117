package searcher

import (
	"math"
	"testing"

	"github.com/Reaganak40/chessai/game"
	"github.com/stretchr/testify/require"
)

func TestNewUCT(t *testing.T) {
	t.Run("panics with zero parent visits", func(t *testing.T) {
		require.Panics(t, func() {
			newUCT(2.0, 0)
		}, "Should panic when N is 0")
	})
}

func TestUCTEvaluate(t *testing.T) {
	t.Run("computing UCT value", func(t *testing.T) {
		policy := newUCT(2.0, 100)
		got := policy.evaluate(5.0, 10)

		expected := 5.0/10 + math.Sqrt(2.0*math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001,
			"Should compute q/n + sqrt(c^2*ln(N)/n)")
	})

	t.Run("matching winrate plus sqrt(2) exploration", func(t *testing.T) {
		policy := newUCT(2.0, 40)
		got := policy.evaluate(3.5, 7)

		expected := 3.5/7 + math.Sqrt2*math.Sqrt(math.Log(40)/7)
		require.InDelta(t, expected, got, 0.0001)
	})

	t.Run("panics with zero child visits", func(t *testing.T) {
		policy := newUCT(2.0, 100)

		require.Panics(t, func() {
			policy.evaluate(5.0, 0)
		}, "Should panic when n is 0")
	})

	t.Run("exploration term increases with parent visits", func(t *testing.T) {
		// More parent visits -> higher exploration
		policy1 := newUCT(2.0, 100)
		policy2 := newUCT(2.0, 1000)

		score1 := policy1.evaluate(5.0, 10)
		score2 := policy2.evaluate(5.0, 10)

		require.Greater(t, score2, score1,
			"More parent visits should increase exploration term")
	})

	t.Run("exploration term decreases with child visits", func(t *testing.T) {
		// More child visits -> lower exploration
		policy := newUCT(2.0, 100)

		score1 := policy.evaluate(5.0, 10)
		score2 := policy.evaluate(5.0, 20)

		require.Greater(t, score1, score2,
			"More child visits should decrease exploration term")
	})

	t.Run("exploitation term increases with rewards", func(t *testing.T) {
		policy := newUCT(2.0, 100)

		score1 := policy.evaluate(5.0, 10)
		score2 := policy.evaluate(10.0, 10)

		require.Greater(t, score2, score1,
			"More rewards should increase exploitation term")
	})
}

func TestReward(t *testing.T) {
	stats := Stats{WhiteWins: 3, BlackWins: 1, Draws: 2}

	t.Run("crediting the side that moved", func(t *testing.T) {
		require.Equal(t, 4.0, reward(stats, game.White), "White wins plus half the draws")
		require.Equal(t, 2.0, reward(stats, game.Black), "Black wins plus half the draws")
	})
}
