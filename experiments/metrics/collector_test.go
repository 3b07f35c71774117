package metrics

import (
	"testing"

	"github.com/Reaganak40/chessai/game"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("summarizing iterations", func(t *testing.T) {
		c := NewCollector()
		c.Start()
		c.AddIteration(IterationMetric{SelectionDepth: 1, SimulationPlies: 10, Outcome: game.WhiteWon})
		c.AddIteration(IterationMetric{SelectionDepth: 3, SimulationPlies: 20, Outcome: game.Drawn, Truncated: true})
		c.AddIteration(IterationMetric{SelectionDepth: 2, SimulationPlies: 30, Outcome: game.BlackWon})

		m := c.Complete()

		require.Equal(t, 3, m.Iterations)
		require.Equal(t, 2, m.FullPlayouts)
		require.Equal(t, 1, m.Truncated)
		require.Equal(t, 1, m.WhiteWins)
		require.Equal(t, 1, m.BlackWins)
		require.Equal(t, 1, m.Draws)
		require.Equal(t, 3, m.MaxDepth)
		require.InDelta(t, 20.0, m.MeanPlies, 1e-9)
		require.InDelta(t, 10.0, m.StdDevPlies, 1e-9, "Should use the sample standard deviation")
	})

	t.Run("single iteration", func(t *testing.T) {
		c := NewCollector()
		c.Start()
		c.AddIteration(IterationMetric{SimulationPlies: 7, Outcome: game.Drawn})

		m := c.Complete()

		require.Equal(t, 7.0, m.MeanPlies)
		require.Zero(t, m.StdDevPlies)
	})

	t.Run("restarting clears iterations", func(t *testing.T) {
		c := NewCollector()
		c.Start()
		c.AddIteration(IterationMetric{Outcome: game.WhiteWon})
		c.Complete()
		c.SetTreeReset(true)

		c.Start()
		m := c.Complete()

		require.Zero(t, m.Iterations)
		require.True(t, m.IsTreeReset)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start()
		c.AddIteration(IterationMetric{Outcome: game.WhiteWon})

		require.Equal(t, SearchMetric{}, c.Complete())
	})
}
