package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Reaganak40/chessai/meta"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes environment variables, e.g. CHESSAI_SAVE_DIR or CHESSAI_LOG_LEVEL.
const EnvPrefix = "CHESSAI"

type Config struct {
	SaveDir               string  `mapstructure:"save_dir" yaml:"save_dir"`
	SnapshotName          string  `mapstructure:"snapshot_name" yaml:"snapshot_name"`
	Iterations            int     `mapstructure:"iterations" yaml:"iterations"`
	ExpansionDenominator  int     `mapstructure:"expansion_denominator" yaml:"expansion_denominator"`
	SimulationDenominator int     `mapstructure:"simulation_denominator" yaml:"simulation_denominator"`
	Exploration           float64 `mapstructure:"exploration" yaml:"exploration"`
	MaxPlies              int     `mapstructure:"max_plies" yaml:"max_plies"`
	Seed                  uint64  `mapstructure:"seed" yaml:"seed"`
	Interactive           bool    `mapstructure:"interactive" yaml:"interactive"`
	HistoryFile           string  `mapstructure:"history_file" yaml:"history_file"`
	MetricsDir            string  `mapstructure:"metrics_dir" yaml:"metrics_dir"`
	FEN                   string  `mapstructure:"fen" yaml:"fen"`

	SelfPlay SelfPlay `mapstructure:"self_play" yaml:"self_play"`
	Log      Log      `mapstructure:"log" yaml:"log"`
}

type SelfPlay struct {
	Games             int `mapstructure:"games" yaml:"games"` // 0 disables self-play
	IterationsPerMove int `mapstructure:"iterations_per_move" yaml:"iterations_per_move"`
	MaxGamePlies      int `mapstructure:"max_game_plies" yaml:"max_game_plies"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// flags maps each configuration key to its command-line flag.
var flags = map[string]string{
	"save_dir":                      "save-dir",
	"snapshot_name":                 "snapshot-name",
	"iterations":                    "iterations",
	"expansion_denominator":         "expansion-denominator",
	"simulation_denominator":        "simulation-denominator",
	"exploration":                   "exploration",
	"max_plies":                     "max-plies",
	"seed":                          "seed",
	"interactive":                   "interactive",
	"history_file":                  "history-file",
	"metrics_dir":                   "metrics-dir",
	"fen":                           "fen",
	"self_play.games":               "self-play",
	"self_play.iterations_per_move": "iterations-per-move",
	"self_play.max_game_plies":      "max-game-plies",
	"log.level":                     "log-level",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("chessai", pflag.ContinueOnError)
	fs.String("config", "", "optional YAML configuration file")
	fs.String("save-dir", meta.SAVE_DIR, "directory holding snapshots")
	fs.String("snapshot-name", meta.SNAPSHOT_NAME, "snapshot file name inside the save directory")
	fs.Int("iterations", 0, "iterations to run in batch mode")
	fs.Int("expansion-denominator", meta.EXPANSION_DENOMINATOR, "random denominator of the policy during selection and expansion")
	fs.Int("simulation-denominator", meta.SIMULATION_DENOMINATOR, "random denominator of the policy during playouts")
	fs.Float64("exploration", meta.EXPLORATION, "c^2 in the UCT exploration term")
	fs.Int("max-plies", meta.MAX_PLIES, "playout length after which a playout counts as a draw")
	fs.Uint64("seed", 0, "random seed, 0 for a random one")
	fs.Bool("interactive", true, "run the interactive shell instead of a batch")
	fs.String("history-file", "/tmp/chessai.history", "shell history file")
	fs.String("metrics-dir", "", "write per-iteration metrics below this directory")
	fs.String("fen", "", "starting position of a new tree")
	fs.Int("self-play", 0, "number of self-play games to run instead of searching the saved tree")
	fs.Int("iterations-per-move", meta.ITERATIONS_PER_MOVE, "search iterations per self-play move")
	fs.Int("max-game-plies", meta.MAX_GAME_PLIES, "self-play game length after which the game is a draw")
	fs.String("log-level", "info", "debug, info, warn or error")
	return fs
}

// Load resolves the configuration from, in order of precedence, command-line args, CHESSAI_
// environment variables, the file named by --config and built-in defaults.
func (c *Config) Load(args []string) error {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	for key, name := range flags {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.SaveDir == "":
		return fmt.Errorf("save_dir is empty: %w", ErrInvalidConfig)
	case c.SnapshotName == "":
		return fmt.Errorf("snapshot_name is empty: %w", ErrInvalidConfig)
	case c.Iterations < 0:
		return fmt.Errorf("iterations is %d: %w", c.Iterations, ErrInvalidConfig)
	case c.ExpansionDenominator < 0 || c.SimulationDenominator < 0:
		return fmt.Errorf("random denominators must not be negative: %w", ErrInvalidConfig)
	case c.Exploration <= 0:
		return fmt.Errorf("exploration is %v: %w", c.Exploration, ErrInvalidConfig)
	case c.MaxPlies <= 0:
		return fmt.Errorf("max_plies is %d: %w", c.MaxPlies, ErrInvalidConfig)
	case c.SelfPlay.Games < 0 || c.SelfPlay.IterationsPerMove <= 0 || c.SelfPlay.MaxGamePlies <= 0:
		return fmt.Errorf("self_play settings must be positive: %w", ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrInvalidConfig)
	}
	return nil
}

// LogLevel returns the configured level; Validate has already checked it parses.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Dump writes the effective configuration as YAML.
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}
