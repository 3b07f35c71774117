package game

import "fmt"

// Color identifies a side. White moves first.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Move is an ordered (origin, destination) pair of board indices.
// Moves are comparable and used as child keys in the search tree.
type Move struct {
	From Square
	To   Square
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// ParseMove accepts "e2e4" or "e2 e4".
func ParseMove(s string) (Move, error) {
	var from, to string
	switch len(s) {
	case 4:
		from, to = s[:2], s[2:]
	case 5:
		if s[2] != ' ' && s[2] != '-' {
			return Move{}, fmt.Errorf("move %q: %w", s, ErrMalformedSquare)
		}
		from, to = s[:2], s[3:]
	default:
		return Move{}, fmt.Errorf("move %q: %w", s, ErrMalformedSquare)
	}

	f, err := ParseSquare(from)
	if err != nil {
		return Move{}, err
	}
	t, err := ParseSquare(to)
	if err != nil {
		return Move{}, err
	}
	return Move{From: f, To: t}, nil
}

// Status is the evaluation of a position. Transitions are one-way: Play -> terminal.
type Status uint8

const (
	Play Status = iota
	Draw
	Checkmate
	Stalemate
)

func (s Status) IsTerminal() bool {
	return s != Play
}

func (s Status) String() string {
	switch s {
	case Play:
		return "PLAY"
	case Draw:
		return "DRAW"
	case Checkmate:
		return "CHECKMATE"
	case Stalemate:
		return "STALEMATE"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Outcome is the result of a finished game.
type Outcome uint8

const (
	NoOutcome Outcome = iota
	WhiteWon
	BlackWon
	Drawn
)

func (o Outcome) String() string {
	switch o {
	case WhiteWon:
		return "1-0"
	case BlackWon:
		return "0-1"
	case Drawn:
		return "1/2-1/2"
	}
	return "*"
}

// Winner returns the color that won, and false for draws and unfinished games.
func (o Outcome) Winner() (Color, bool) {
	switch o {
	case WhiteWon:
		return White, true
	case BlackWon:
		return Black, true
	}
	return White, false
}
