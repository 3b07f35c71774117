package game

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

type direction struct {
	dr, dc int
}

func (d direction) diagonal() bool {
	return d.dr != 0 && d.dc != 0
}

// kingDirections are scanned in this order: top-left, top, top-right, left, right,
// bottom-left, bottom, bottom-right. The opposite of direction i is 7-i.
var kingDirections = [8]direction{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

var (
	orthogonals = []direction{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}
	diagonals   = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	allLines    = append(slices.Clone(orthogonals), diagonals...)
	knightJumps = []direction{
		{-2, -1}, {-1, -2}, {1, -2}, {2, -1},
		{-2, 1}, {-1, 2}, {1, 2}, {2, 1},
	}
)

// slidesAlong reports whether p attacks along lines parallel to d.
func slidesAlong(p Piece, d direction) bool {
	switch p.Kind() {
	case Queen:
		return true
	case Rook:
		return !d.diagonal()
	case Bishop:
		return d.diagonal()
	}
	return false
}

// safety is what a scan outward from a king learns about checks and pins.
type safety struct {
	king      Square
	attackers []Square
	checkPath []Square // squares on which a non-king piece blocks or captures a checker
	pinned    [NumSquares]bool
	safe      [8]bool // per kingDirections, false if a checking line runs through it
}

func (s *safety) inCheck() bool {
	return len(s.attackers) > 0
}

func (s *safety) doubleCheck() bool {
	return len(s.attackers) > 1
}

// scanChecks finds the checks on the king of color us standing on king, and the friendly pieces
// pinned to it. In checkOnly mode it stops at the first check and reports it; pins and paths are
// not collected.
func scanChecks(b *Board, king Square, us Color, checkOnly bool) (safety, bool) {
	s := safety{king: king}
	for i := range s.safe {
		s.safe[i] = true
	}
	them := us.Opponent()

	for i, d := range kingDirections {
		ally := NoSquare
		var path []Square
		for sq, ok := king.offset(d.dr, d.dc); ok; sq, ok = sq.offset(d.dr, d.dc) {
			if !checkOnly {
				path = append(path, sq)
			}
			piece := b[sq]
			if piece.IsEmpty() {
				continue
			}
			if piece.Belongs(us) {
				if ally != NoSquare || checkOnly {
					break
				}
				ally = sq
				continue
			}
			if slidesAlong(piece, d) {
				if ally != NoSquare {
					s.pinned[ally] = true
					break
				}
				if checkOnly {
					return s, true
				}
				s.attackers = append(s.attackers, sq)
				s.checkPath = append(s.checkPath, path...)
				// Retreating along the line stays in check. Stepping toward the checker is only
				// possible when that step captures it.
				s.safe[7-i] = false
				if len(path) > 1 {
					s.safe[i] = false
				}
			}
			break
		}
	}

	enemyKnight := MakePiece(Knight, them)
	for _, j := range knightJumps {
		if sq, ok := king.offset(j.dr, j.dc); ok && b[sq] == enemyKnight {
			if checkOnly {
				return s, true
			}
			s.attackers = append(s.attackers, sq)
			s.checkPath = append(s.checkPath, sq)
		}
	}

	// Enemy pawns attack toward us, so they sit one row ahead of our king.
	forward := pawnForward(us)
	enemyPawn := MakePiece(Pawn, them)
	for _, dc := range [2]int{-1, 1} {
		if sq, ok := king.offset(forward, dc); ok && b[sq] == enemyPawn {
			if checkOnly {
				return s, true
			}
			s.attackers = append(s.attackers, sq)
			s.checkPath = append(s.checkPath, sq)
		}
	}

	return s, false
}

func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func findKing(b *Board, c Color) Square {
	king := MakePiece(King, c)
	for sq, piece := range b {
		if piece == king {
			return Square(sq)
		}
	}
	return NoSquare
}

// nextToPiece reports whether any of the eight neighbors of sq holds piece.
func nextToPiece(b *Board, sq Square, piece Piece) bool {
	for _, d := range kingDirections {
		if n, ok := sq.offset(d.dr, d.dc); ok && b[n] == piece {
			return true
		}
	}
	return false
}

// genContext is shared by the per-piece generators during one LegalMoves call.
type genContext struct {
	board  *Board
	us     Color
	safety *safety
}

// pieceMoves generates the moves of one piece kind from a square.
type pieceMoves interface {
	generate(ctx *genContext, from Square, dst []Move) []Move
}

type slider struct {
	lines []direction
}

// generate walks each line until the edge or the first occupied square, which is included
// when it holds an enemy piece.
func (s slider) generate(ctx *genContext, from Square, dst []Move) []Move {
	for _, d := range s.lines {
		for to, ok := from.offset(d.dr, d.dc); ok; to, ok = to.offset(d.dr, d.dc) {
			target := ctx.board[to]
			if target.Belongs(ctx.us) {
				break
			}
			dst = append(dst, Move{From: from, To: to})
			if !target.IsEmpty() {
				break
			}
		}
	}
	return dst
}

type leaper struct {
	jumps []direction
}

func (l leaper) generate(ctx *genContext, from Square, dst []Move) []Move {
	for _, j := range l.jumps {
		if to, ok := from.offset(j.dr, j.dc); ok && !ctx.board[to].Belongs(ctx.us) {
			dst = append(dst, Move{From: from, To: to})
		}
	}
	return dst
}

type pawn struct{}

// generate advances one square, or two from the starting row through empty squares, and
// captures diagonally forward onto enemy pieces only. Promotion is not modeled.
func (pawn) generate(ctx *genContext, from Square, dst []Move) []Move {
	b := ctx.board
	forward := pawnForward(ctx.us)
	if one, ok := from.offset(forward, 0); ok && b[one].IsEmpty() {
		dst = append(dst, Move{From: from, To: one})
		if from.Row() == pawnStartRow(ctx.us) {
			if two, ok := from.offset(2*forward, 0); ok && b[two].IsEmpty() {
				dst = append(dst, Move{From: from, To: two})
			}
		}
	}
	for _, dc := range [2]int{-1, 1} {
		if to, ok := from.offset(forward, dc); ok && !b[to].IsEmpty() && !b[to].Belongs(ctx.us) {
			dst = append(dst, Move{From: from, To: to})
		}
	}
	return dst
}

type king struct{}

// generate returns only safe king steps: the direction is not on a checking line, the
// destination is not next to the enemy king, and a probe with the king moved there finds no check.
func (king) generate(ctx *genContext, from Square, dst []Move) []Move {
	enemyKing := MakePiece(King, ctx.us.Opponent())
	for i, d := range kingDirections {
		if !ctx.safety.safe[i] {
			continue
		}
		to, ok := from.offset(d.dr, d.dc)
		if !ok || ctx.board[to].Belongs(ctx.us) {
			continue
		}
		if nextToPiece(ctx.board, to, enemyKing) {
			continue
		}
		// Probe on a copy so the shared board is never left modified.
		probe := *ctx.board
		probe[to] = probe[from]
		probe[from] = Empty
		if _, checked := scanChecks(&probe, to, ctx.us, true); checked {
			continue
		}
		dst = append(dst, Move{From: from, To: to})
	}
	return dst
}

var generators = [...]pieceMoves{
	King:   king{},
	Queen:  slider{lines: allLines},
	Bishop: slider{lines: diagonals},
	Knight: leaper{jumps: knightJumps},
	Rook:   slider{lines: orthogonals},
	Pawn:   pawn{},
}

// movesFor selects the generator for a piece.
func movesFor(p Piece) pieceMoves {
	return generators[p.Kind()]
}

// LegalMoves returns the legal moves of the side to move, king moves first.
//
// This is a side-effecting query: the first call decides the status of the position. An empty
// result marks it CHECKMATE when the king is in check and STALEMATE otherwise, so Status is
// authoritative only after LegalMoves. Positions that are already terminal return no moves.
//
// Pinned pieces are given no moves at all, even along the pin line. Castling, en passant and
// promotion are not modeled.
func (p *Position) LegalMoves() ([]Move, error) {
	if p.status.IsTerminal() {
		return nil, nil
	}
	if !p.generated {
		moves, inCheck, err := generateMoves(&p.board, p.turn)
		if err != nil {
			return nil, err
		}
		p.moves, p.generated = moves, true
		if len(moves) == 0 {
			if inCheck {
				p.setStatus(Checkmate)
			} else {
				p.setStatus(Stalemate)
			}
		}
	}
	return slices.Clone(p.moves), nil
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() (bool, error) {
	king := findKing(&p.board, p.turn)
	if king == NoSquare {
		return false, fmt.Errorf("%v: %w", p.turn, ErrKingMissing)
	}
	_, checked := scanChecks(&p.board, king, p.turn, true)
	return checked, nil
}

func generateMoves(b *Board, us Color) ([]Move, bool, error) {
	kingSq := findKing(b, us)
	if kingSq == NoSquare {
		return nil, false, fmt.Errorf("%v: %w", us, ErrKingMissing)
	}

	s, _ := scanChecks(b, kingSq, us, false)
	ctx := &genContext{board: b, us: us, safety: &s}

	moves := movesFor(b[kingSq]).generate(ctx, kingSq, nil)
	if s.doubleCheck() {
		return moves, true, nil
	}

	var candidates []Move
	for i, piece := range b {
		from := Square(i)
		if !piece.Belongs(us) || piece.Kind() == King || s.pinned[from] {
			continue
		}
		candidates = movesFor(piece).generate(ctx, from, candidates[:0])
		for _, m := range candidates {
			if b[m.To].Kind() == King {
				return nil, false, fmt.Errorf("%v takes the king on %v: %w", m, m.To, ErrKingCaptured)
			}
			// In check, a move must block the checking line or capture the checker.
			if s.inCheck() && !lo.Contains(s.checkPath, m.To) {
				continue
			}
			moves = append(moves, m)
		}
	}
	return moves, s.inCheck(), nil
}

// Perft counts the leaf positions reachable in exactly depth plies.
func Perft(p *Position, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	moves, err := p.LegalMoves()
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(len(moves)), nil
	}
	var total uint64
	for _, m := range moves {
		child, err := p.Play(m)
		if err != nil {
			return 0, err
		}
		n, err := Perft(child, depth-1)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
