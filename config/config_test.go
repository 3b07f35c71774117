package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Reaganak40/chessai/meta"
	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	var c Config

	is.NoErr(c.Load(nil))

	is.Equal(c.SaveDir, meta.SAVE_DIR)
	is.Equal(c.SnapshotName, meta.SNAPSHOT_NAME)
	is.Equal(c.Exploration, meta.EXPLORATION)
	is.Equal(c.ExpansionDenominator, meta.EXPANSION_DENOMINATOR)
	is.Equal(c.SimulationDenominator, meta.SIMULATION_DENOMINATOR)
	is.Equal(c.MaxPlies, meta.MAX_PLIES)
	is.Equal(c.Seed, uint64(0))
	is.True(c.Interactive)
	is.Equal(c.SelfPlay.IterationsPerMove, meta.ITERATIONS_PER_MOVE)
	is.Equal(c.LogLevel(), zerolog.InfoLevel)
}

func TestFlags(t *testing.T) {
	is := is.New(t)
	var c Config

	err := c.Load([]string{
		"--save-dir", "/tmp/trees", "--iterations=50", "--interactive=false",
		"--seed", "99", "--log-level", "debug", "--self-play", "3",
	})

	is.NoErr(err)
	is.Equal(c.SaveDir, "/tmp/trees")
	is.Equal(c.Iterations, 50)
	is.True(!c.Interactive)
	is.Equal(c.Seed, uint64(99))
	is.Equal(c.LogLevel(), zerolog.DebugLevel)
	is.Equal(c.SelfPlay.Games, 3)
}

func TestPrecedence(t *testing.T) {
	is := is.New(t)
	file := filepath.Join(t.TempDir(), "chessai.yaml")
	is.NoErr(os.WriteFile(file, []byte(`
save_dir: /from/file
snapshot_name: file.snap
max_plies: 77
log:
  level: warn
self_play:
  games: 2
`), 0644))
	t.Setenv("CHESSAI_SNAPSHOT_NAME", "env.snap")
	t.Setenv("CHESSAI_MAX_PLIES", "88")
	t.Setenv("CHESSAI_SELF_PLAY_MAX_GAME_PLIES", "40")
	var c Config

	err := c.Load([]string{"--config", file, "--max-plies", "99"})

	is.NoErr(err)
	is.Equal(c.SaveDir, "/from/file")         // file over default
	is.Equal(c.SnapshotName, "env.snap")      // env over file
	is.Equal(c.MaxPlies, 99)                  // flag over env
	is.Equal(c.LogLevel(), zerolog.WarnLevel) // nested file key
	is.Equal(c.SelfPlay.Games, 2)             // nested file key
	is.Equal(c.SelfPlay.MaxGamePlies, 40)     // nested env key
}

func TestInvalid(t *testing.T) {
	for name, args := range map[string][]string{
		"negative denominator": {"--expansion-denominator", "-1"},
		"zero exploration":     {"--exploration", "0"},
		"zero ply cap":         {"--max-plies", "0"},
		"negative iterations":  {"--iterations", "-5"},
		"unknown level":        {"--log-level", "loud"},
		"empty save dir":       {"--save-dir", ""},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			var c Config

			err := c.Load(args)

			is.True(errors.Is(err, ErrInvalidConfig))
		})
	}

	t.Run("unknown flag", func(t *testing.T) {
		is := is.New(t)
		var c Config

		is.True(c.Load([]string{"--bogus"}) != nil)
	})

	t.Run("missing config file", func(t *testing.T) {
		is := is.New(t)
		var c Config

		is.True(c.Load([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}) != nil)
	})
}

func TestDump(t *testing.T) {
	is := is.New(t)
	var c Config
	is.NoErr(c.Load([]string{"--fen", "8/8/8/8/8/8/8/K6k w - - 0 1"}))
	var buf bytes.Buffer

	is.NoErr(c.Dump(&buf))

	is.True(bytes.Contains(buf.Bytes(), []byte("save_dir: ./data")))
	is.True(bytes.Contains(buf.Bytes(), []byte("level: info")))
	is.True(bytes.Contains(buf.Bytes(), []byte("K6k w")))
}
