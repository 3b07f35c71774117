package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Reaganak40/chessai/engine"
	"github.com/Reaganak40/chessai/game"
	"github.com/Reaganak40/chessai/searcher"
	"github.com/Reaganak40/chessai/snapshot"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*ShellController, *bytes.Buffer, *snapshot.Store) {
	t.Helper()
	store := snapshot.NewStore(t.TempDir(), "tree.snap")
	mcts := searcher.NewMCTS(searcher.NewRoot(game.StartingPosition()), searcher.WithSeed(17), searcher.WithMaxPlies(30))
	out := &bytes.Buffer{}
	return &ShellController{out: out, engine: engine.New(mcts, store)}, out, store
}

func run(t *testing.T, sc *ShellController, line string) bool {
	t.Helper()
	cmd, err := extractFields(line)
	require.NoError(t, err)
	stop, err := sc.execute(cmd)
	require.NoError(t, err)
	return stop
}

func TestExtractFields(t *testing.T) {
	for _, tc := range []struct {
		line string
		want *shellcmd
	}{
		{"", &shellcmd{}},
		{"   ", &shellcmd{}},
		{"0", &shellcmd{cmd: "0", args: []string{}}},
		{"play e2e4", &shellcmd{cmd: "play", args: []string{"e2e4"}}},
		{`pgn "my games/line.pgn"`, &shellcmd{cmd: "pgn", args: []string{"my games/line.pgn"}}},
	} {
		t.Run(tc.line, func(t *testing.T) {
			cmd, err := extractFields(tc.line)

			require.NoError(t, err)
			require.Equal(t, tc.want, cmd)
		})
	}

	t.Run("unterminated quote", func(t *testing.T) {
		_, err := extractFields(`pgn "oops`)

		require.Error(t, err)
	})
}

func TestControlTokens(t *testing.T) {
	t.Run("empty line steps and saves", func(t *testing.T) {
		sc, out, store := newTestShell(t)

		stop := run(t, sc, "")

		require.False(t, stop)
		require.Contains(t, out.String(), "iteration 1:")
		loaded, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, 2, loaded.Size())
	})

	t.Run("zero stops", func(t *testing.T) {
		sc, _, _ := newTestShell(t)

		require.True(t, run(t, sc, "0"))
	})

	t.Run("one saves without searching", func(t *testing.T) {
		sc, out, store := newTestShell(t)

		stop := run(t, sc, "1")

		require.False(t, stop)
		require.Equal(t, 0, sc.engine.Steps())
		require.Contains(t, out.String(), "saved 1 nodes")
		loaded, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, 1, loaded.Size())
	})
}

func TestCommands(t *testing.T) {
	t.Run("running and listing the best moves", func(t *testing.T) {
		sc, out, _ := newTestShell(t)

		run(t, sc, "run 5")
		out.Reset()
		run(t, sc, "best")

		require.Contains(t, out.String(), "visits")
		require.Equal(t, 5, sc.engine.Steps())
	})

	t.Run("nothing searched yet", func(t *testing.T) {
		sc, out, _ := newTestShell(t)

		run(t, sc, "best")

		require.Contains(t, out.String(), "no moves searched yet")
	})

	t.Run("playing moves and exporting the line", func(t *testing.T) {
		sc, out, _ := newTestShell(t)
		file := filepath.Join(t.TempDir(), "line.pgn")

		run(t, sc, "play e2e4")
		run(t, sc, "play e7e5")
		run(t, sc, "pgn "+file)

		require.Contains(t, out.String(), "wrote "+file)
		pgn, err := os.ReadFile(file)
		require.NoError(t, err)
		require.Contains(t, string(pgn), "e4")
		require.Contains(t, string(pgn), "e5")
	})

	t.Run("rejecting an illegal move", func(t *testing.T) {
		sc, out, _ := newTestShell(t)

		run(t, sc, "play e2e5")

		require.Contains(t, out.String(), "Error:")
		require.Same(t, sc.engine.MCTS().Root(), sc.engine.MCTS().Resume())
	})

	t.Run("resetting to the root", func(t *testing.T) {
		sc, _, _ := newTestShell(t)
		run(t, sc, "play d2d4")

		run(t, sc, "reset")

		require.Same(t, sc.engine.MCTS().Root(), sc.engine.MCTS().Resume())
	})

	t.Run("reporting bad input", func(t *testing.T) {
		sc, out, _ := newTestShell(t)

		for _, line := range []string{"fly", "run", "run x", "play", "pgn a b"} {
			out.Reset()
			require.False(t, run(t, sc, line))
			require.Contains(t, out.String(), "Error:", line)
		}
	})

	t.Run("stats and help", func(t *testing.T) {
		sc, out, _ := newTestShell(t)

		run(t, sc, "stats")
		run(t, sc, "help")

		require.Contains(t, out.String(), "nodes: 1")
		require.Contains(t, out.String(), "play <move>")
	})
}
