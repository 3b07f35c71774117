package game

// Kind is a piece type regardless of color.
type Kind uint8

const (
	NoKind Kind = iota
	King
	Queen
	Bishop
	Knight
	Rook
	Pawn
)

// Piece is the content of a board cell: Empty or one of the twelve colored pieces.
// White pieces are 1..6 and black pieces are 7..12, in Kind order.
type Piece uint8

const (
	Empty Piece = iota
	WhiteKing
	WhiteQueen
	WhiteBishop
	WhiteKnight
	WhiteRook
	WhitePawn
	BlackKing
	BlackQueen
	BlackBishop
	BlackKnight
	BlackRook
	BlackPawn
)

const kindsPerColor = 6

// pieceValues are the standard point values. Kings are excluded from material.
var pieceValues = [...]int{
	NoKind: 0,
	King:   0,
	Queen:  9,
	Bishop: 3,
	Knight: 3,
	Rook:   5,
	Pawn:   1,
}

// StartingMaterial is each side's material in the standard starting position.
const StartingMaterial = 39

func MakePiece(k Kind, c Color) Piece {
	if k == NoKind {
		return Empty
	}
	return Piece(uint8(c)*kindsPerColor + uint8(k))
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

func (p Piece) Kind() Kind {
	if p == Empty {
		return NoKind
	}
	return Kind((uint8(p)-1)%kindsPerColor + 1)
}

// Color is only meaningful for non-empty pieces.
func (p Piece) Color() Color {
	if p > WhitePawn {
		return Black
	}
	return White
}

func (p Piece) Belongs(c Color) bool {
	return p != Empty && p.Color() == c
}

func (p Piece) Value() int {
	return pieceValues[p.Kind()]
}

var pieceLetters = [...]byte{'.', 'K', 'Q', 'B', 'N', 'R', 'P', 'k', 'q', 'b', 'n', 'r', 'p'}

func (p Piece) String() string {
	if int(p) >= len(pieceLetters) {
		return "?"
	}
	return string(pieceLetters[p])
}
