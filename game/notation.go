package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

var kindsFromChess = map[chess.PieceType]Kind{
	chess.King:   King,
	chess.Queen:  Queen,
	chess.Bishop: Bishop,
	chess.Knight: Knight,
	chess.Rook:   Rook,
	chess.Pawn:   Pawn,
}

// fromChessSquare converts an a1-based square index to ours.
func fromChessSquare(sq chess.Square) Square {
	return NewSquare(7-int(sq.Rank()), int(sq.File()))
}

func fromChessColor(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

// PositionFromFEN builds a position from Forsyth-Edwards Notation. The en passant field is
// ignored and castling rights collapse to one flag per color.
func PositionFromFEN(fen string) (*Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FEN %q: %w", fen, err)
	}
	pos := chess.NewGame(opt).Position()

	var board Board
	for sq, piece := range pos.Board().SquareMap() {
		if piece == chess.NoPiece {
			continue
		}
		board[fromChessSquare(sq)] = MakePiece(kindsFromChess[piece.Type()], fromChessColor(piece.Color()))
	}

	rights := pos.CastleRights()
	record := Record{
		Board: board,
		Turn:  fromChessColor(pos.Turn()),
		Castling: [2]bool{
			rights.CanCastle(chess.White, chess.KingSide) || rights.CanCastle(chess.White, chess.QueenSide),
			rights.CanCastle(chess.Black, chess.KingSide) || rights.CanCastle(chess.Black, chess.QueenSide),
		},
	}
	if fields := strings.Fields(fen); len(fields) > 4 {
		if clock, err := strconv.Atoi(fields[4]); err == nil {
			record.Progress = clock
		}
	}
	p := FromRecord(record)
	if p.progress >= FiftyMoveLimit {
		p.setStatus(Draw)
	}
	return p, nil
}

// ExportPGN replays moves from start and renders the game as PGN. Replay stops at the first move
// standard chess rejects, such as a pawn reaching the last rank without promoting; the PGN of the
// moves accepted so far is returned together with the error.
func ExportPGN(start *Position, moves []Move, result Outcome) (string, error) {
	opt, err := chess.FEN(start.FEN())
	if err != nil {
		return "", fmt.Errorf("failed to load start position: %w", err)
	}
	g := chess.NewGame(opt)
	g.AddTagPair("Event", "chessai self-play")
	if result != NoOutcome {
		g.AddTagPair("Result", result.String())
	}

	for i, m := range moves {
		cm, err := chess.UCINotation{}.Decode(g.Position(), m.String())
		if err == nil {
			err = g.Move(cm)
		}
		if err != nil {
			return g.String(), fmt.Errorf("failed to replay ply %d (%v): %w", i+1, m, err)
		}
	}
	return g.String(), nil
}
