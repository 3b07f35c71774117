package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
)

// FiftyMoveLimit is the number of plies without a capture that forces a draw.
const FiftyMoveLimit = 50

// Board holds one Piece per square, indexed by Square.
type Board [NumSquares]Piece

// Position is a game state. Positions are immutable once created except for their status,
// which is decided by the first call to LegalMoves (see there).
type Position struct {
	board    Board
	turn     Color
	castling [2]bool // tracked, not used by move generation
	lastMove Move
	hasLast  bool
	progress int // plies since the last capture
	material [2]int
	status   Status

	// Cached result of LegalMoves
	moves     []Move
	generated bool
}

// Record holds every field needed to rebuild a Position, for serialization.
type Record struct {
	Board       Board
	Turn        Color
	Castling    [2]bool
	LastMove    Move
	HasLastMove bool
	Progress    int
	Status      Status
}

func startingBoard() Board {
	var b Board
	back := [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col, k := range back {
		b[NewSquare(0, col)] = MakePiece(k, Black)
		b[NewSquare(1, col)] = BlackPawn
		b[NewSquare(6, col)] = WhitePawn
		b[NewSquare(7, col)] = MakePiece(k, White)
	}
	return b
}

// StartingPosition returns the standard initial position, white to move.
func StartingPosition() *Position {
	return NewPosition(startingBoard(), White)
}

// NewPosition builds a position from an arbitrary board. Material is tallied from the board.
func NewPosition(board Board, turn Color) *Position {
	return FromRecord(Record{
		Board:    board,
		Turn:     turn,
		Castling: [2]bool{true, true},
	})
}

func FromRecord(r Record) *Position {
	p := &Position{
		board:    r.Board,
		turn:     r.Turn,
		castling: r.Castling,
		lastMove: r.LastMove,
		hasLast:  r.HasLastMove,
		progress: r.Progress,
		status:   r.Status,
	}
	for _, piece := range p.board {
		if !piece.IsEmpty() {
			p.material[piece.Color()] += piece.Value()
		}
	}
	return p
}

func (p *Position) Record() Record {
	return Record{
		Board:       p.board,
		Turn:        p.turn,
		Castling:    p.castling,
		LastMove:    p.lastMove,
		HasLastMove: p.hasLast,
		Progress:    p.progress,
		Status:      p.status,
	}
}

func (p *Position) Board() Board {
	return p.board
}

func (p *Position) At(sq Square) Piece {
	return p.board[sq]
}

// Turn returns the side to move.
func (p *Position) Turn() Color {
	return p.turn
}

func (p *Position) CanCastle(c Color) bool {
	return p.castling[c]
}

// LastMove returns the move that produced this position; false for a root position.
func (p *Position) LastMove() (Move, bool) {
	return p.lastMove, p.hasLast
}

func (p *Position) Progress() int {
	return p.progress
}

// Material returns the sum of point values of c's pieces, king excluded.
func (p *Position) Material(c Color) int {
	return p.material[c]
}

// Status is authoritative only after LegalMoves has been called on this position.
func (p *Position) Status() Status {
	return p.status
}

// Outcome maps a terminal status to a game result. Checkmate is a loss for the side to move.
func (p *Position) Outcome() Outcome {
	switch p.status {
	case Checkmate:
		if p.turn == White {
			return BlackWon
		}
		return WhiteWon
	case Draw, Stalemate:
		return Drawn
	}
	return NoOutcome
}

// Play applies m and returns the resulting position. The receiver is not modified.
// The child's checkmate/stalemate status is decided lazily by its first LegalMoves call;
// draws by the fifty-move rule or bare kings are decided here.
func (p *Position) Play(m Move) (*Position, error) {
	if !m.From.Valid() || !m.To.Valid() {
		return nil, fmt.Errorf("move %v: %w", m, ErrMalformedSquare)
	}
	captured := p.board[m.To]
	if captured.Kind() == King {
		return nil, fmt.Errorf("%v takes the %v king: %w", m, captured.Color(), ErrKingCaptured)
	}

	child := &Position{
		board:    p.board,
		turn:     p.turn.Opponent(),
		castling: p.castling,
		lastMove: m,
		hasLast:  true,
		progress: p.progress + 1,
		material: p.material,
		status:   p.status,
	}
	moved := child.board[m.From]
	child.board[m.To] = moved
	child.board[m.From] = Empty
	if moved.Kind() == King {
		child.castling[moved.Color()] = false
	}

	if !captured.IsEmpty() {
		child.progress = 0
		child.material[captured.Color()] -= captured.Value()
		if child.material[White] == 0 && child.material[Black] == 0 {
			child.setStatus(Draw)
		}
	} else if child.progress >= FiftyMoveLimit {
		child.setStatus(Draw)
	}
	return child, nil
}

// Flipped returns a copy of the position with the other side to move, used to measure
// the mover's follow-up mobility. The copy is never part of a game.
func (p *Position) Flipped() *Position {
	return &Position{
		board:    p.board,
		turn:     p.turn.Opponent(),
		castling: p.castling,
		lastMove: p.lastMove,
		hasLast:  p.hasLast,
		progress: p.progress,
		material: p.material,
	}
}

func (p *Position) setStatus(s Status) {
	if p.status == Play {
		p.status = s
	}
}

// Hash fingerprints the board and side to move.
func (p *Position) Hash() uint64 {
	var buf [NumSquares + 1]byte
	for i, piece := range p.board {
		buf[i] = byte(piece)
	}
	buf[NumSquares] = byte(p.turn)
	return xxhash.Sum64(buf[:])
}

func (p *Position) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.WriteByte(byte('8' - row))
		sb.WriteByte(' ')
		for col := 0; col < 8; col++ {
			sb.WriteString(p.board[NewSquare(row, col)].String())
			if col < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	fmt.Fprintf(&sb, "%v to move, material %d-%d, progress %d, %v",
		p.turn, p.material[White], p.material[Black], p.progress, p.status)
	return sb.String()
}

// FEN renders the position in Forsyth-Edwards Notation. Castling and en passant fields are
// always "-" since neither is modeled.
func (p *Position) FEN() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			piece := p.board[NewSquare(row, col)]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if p.turn == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s - - %d 1", side, p.progress)
	return sb.String()
}
