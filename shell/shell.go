package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Reaganak40/chessai/engine"
	"github.com/Reaganak40/chessai/game"
	"github.com/Reaganak40/chessai/searcher"
	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
)

const helpText = `<enter>        run one iteration and save the tree
0              stop
1              save the tree now
run <n>        run n iterations
show           print the position at the resume point
best           print the most visited moves at the resume point
play <move>    move the resume point, e.g. play e2e4
reset          resume from the root again
pgn [file]     print or write the line from the root to the resume point
stats          print tree statistics
help           print this message`

var errWrongArgs = errors.New("wrong number of arguments")

type shellcmd struct {
	cmd  string
	args []string
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return &shellcmd{}, nil
	}
	return &shellcmd{cmd: fields[0], args: fields[1:]}, nil
}

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	engine *engine.Engine
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(e *engine.Engine, historyFile string) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mchessai>\033[0m ",
		HistoryFile:     historyFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start readline: %w", err)
	}
	return &ShellController{l: l, out: l.Stdout(), engine: e}, nil
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.out, msg)
	io.WriteString(sc.out, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Loop reads commands until the user stops or a step fails. A failed step has already saved
// the last good tree and is returned.
func (sc *ShellController) Loop() error {
	defer sc.l.Close()
	sc.showMessage(sc.engine.MCTS().Resume().Position().String())

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		cmd, err := extractFields(strings.TrimSpace(line))
		if err != nil {
			sc.showError(err)
			continue
		}
		stop, err := sc.execute(cmd)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
	return nil
}

// execute runs one command. Only failed iterations are returned as errors; anything else is
// reported to the user and the loop goes on.
func (sc *ShellController) execute(cmd *shellcmd) (bool, error) {
	mcts := sc.engine.MCTS()

	switch cmd.cmd {
	case "":
		it, err := sc.engine.Step()
		if err != nil {
			return false, err
		}
		sc.showIteration(it)

	case "0", "exit", "quit":
		return true, nil

	case "1":
		if err := sc.engine.Save(); err != nil {
			sc.showError(err)
			break
		}
		sc.showMessage(fmt.Sprintf("saved %d nodes", mcts.Root().Size()))

	case "run":
		if len(cmd.args) != 1 {
			sc.showError(errWrongArgs)
			break
		}
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil || n < 0 {
			sc.showError(fmt.Errorf("bad iteration count %q", cmd.args[0]))
			break
		}
		if err := sc.engine.Run(n); err != nil {
			return false, err
		}
		sc.showStats()

	case "show":
		sc.showMessage(mcts.Resume().Position().String())

	case "best":
		sc.showBest()

	case "play":
		if len(cmd.args) != 1 {
			sc.showError(errWrongArgs)
			break
		}
		move, err := game.ParseMove(cmd.args[0])
		if err == nil {
			err = mcts.Advance(move)
		}
		if err != nil {
			sc.showError(err)
			break
		}
		sc.showMessage(mcts.Resume().Position().String())

	case "reset":
		mcts.ResumeFrom(nil)
		sc.showMessage(mcts.Resume().Position().String())

	case "pgn":
		if len(cmd.args) > 1 {
			sc.showError(errWrongArgs)
			break
		}
		sc.exportPGN(cmd.args)

	case "stats":
		sc.showStats()

	case "help":
		sc.showMessage(helpText)

	default:
		sc.showError(fmt.Errorf("unknown command %q, try help", cmd.cmd))
	}
	return false, nil
}

func (sc *ShellController) showIteration(it searcher.Iteration) {
	expanded := "none"
	if it.Expanded != nil {
		move, _ := it.Expanded.Move()
		expanded = move.String()
	}
	sc.showMessage(fmt.Sprintf("iteration %d: expanded %s at depth %d, %d plies, %s (truncated: %v)",
		sc.engine.Steps(), expanded, it.SelectionDepth, it.SimulationPlies, it.Outcome, it.Truncated))
}

func (sc *ShellController) showBest() {
	mcts := sc.engine.MCTS()
	policy := mcts.Policy()
	if len(policy) == 0 {
		sc.showMessage("no moves searched yet")
		return
	}
	moves := make([]game.Move, 0, len(policy))
	for move := range policy {
		moves = append(moves, move)
	}
	slices.SortFunc(moves, func(a, b game.Move) int {
		if policy[a] != policy[b] {
			if policy[a] > policy[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(a.String(), b.String())
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s %8s %7s\n", "move", "visits", "share")
	for _, move := range moves[:min(len(moves), 10)] {
		child, _ := mcts.Resume().Child(move)
		fmt.Fprintf(&sb, "%-6s %8d %6.1f%%\n", move, child.Visits(), 100*policy[move])
	}
	sc.showMessage(strings.TrimSuffix(sb.String(), "\n"))
}

func (sc *ShellController) showStats() {
	mcts := sc.engine.MCTS()
	root, resume := mcts.Root(), mcts.Resume()
	s := root.Stats()
	sc.showMessage(fmt.Sprintf(
		"nodes: %d\nroot visits: %d (white %d, black %d, draws %d)\nresume visits: %d at ply %d\nsteps this session: %d",
		root.Size(), s.Visits(), s.WhiteWins, s.BlackWins, s.Draws, resume.Visits(), len(mcts.Path()), sc.engine.Steps()))
}

func (sc *ShellController) exportPGN(args []string) {
	mcts := sc.engine.MCTS()
	path := mcts.Path()
	moves := make([]game.Move, len(path))
	for i, segment := range path {
		moves[i] = segment.Move
	}
	pgn, err := game.ExportPGN(mcts.Root().Position(), moves, mcts.Resume().Position().Outcome())
	if err != nil {
		sc.showError(err)
	}

	if len(args) == 0 {
		sc.showMessage(pgn)
		return
	}
	if err := os.WriteFile(args[0], []byte(pgn), 0644); err != nil {
		sc.showError(err)
		return
	}
	sc.showMessage("wrote " + args[0])
}
