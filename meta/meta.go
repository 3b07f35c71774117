// meta/meta.go
package meta

// EXPLORATION is c^2 in the UCT exploration term.
const EXPLORATION = 2.0

// EXPANSION_DENOMINATOR is the random denominator of the policy during selection and expansion.
const EXPANSION_DENOMINATOR = 0

// SIMULATION_DENOMINATOR is the random denominator of the policy during playouts.
const SIMULATION_DENOMINATOR = 10

// MAX_PLIES caps a playout; a capped playout counts as a draw.
const MAX_PLIES = 1000

const SAVE_DIR = "./data"

const SNAPSHOT_NAME = "tree.snap"

// ITERATIONS_PER_MOVE is the search budget per ply in self-play.
const ITERATIONS_PER_MOVE = 200

// SELF_PLAY_GAMES is the default number of self-play games.
const SELF_PLAY_GAMES = 1

// MAX_GAME_PLIES ends a self-play game as a draw.
const MAX_GAME_PLIES = 300
