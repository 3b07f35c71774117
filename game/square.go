package game

import "fmt"

// Square is a board index in 0..63, row-major with rank 8 at index 0 (a8 = 0, h1 = 63).
type Square int8

const NumSquares = 64

// NoSquare marks the absence of a square.
const NoSquare Square = -1

func NewSquare(row, col int) Square {
	return Square(row*8 + col)
}

func (s Square) Row() int {
	return int(s) / 8
}

func (s Square) Col() int {
	return int(s) % 8
}

func (s Square) Valid() bool {
	return s >= 0 && s < NumSquares
}

// String returns algebraic notation, e.g. index 52 -> "e2".
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.Col()), byte('0' + 8 - s.Row())})
}

// ParseSquare converts algebraic notation to an index: (8 - rank) * 8 + (file - 'a').
// The file letter is case-insensitive.
func ParseSquare(token string) (Square, error) {
	if len(token) != 2 {
		return NoSquare, fmt.Errorf("[%s] must be of length 2: %w", token, ErrMalformedSquare)
	}
	file := token[0] | 0x20 // lower-case
	rank := token[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("[%s] is not a board square: %w", token, ErrMalformedSquare)
	}
	return Square(int('8'-rank)*8 + int(file-'a')), nil
}

// MustParseSquare is ParseSquare for literals known to be valid.
func MustParseSquare(token string) Square {
	sq, err := ParseSquare(token)
	if err != nil {
		panic(err)
	}
	return sq
}

// offset returns the square reached by moving dr rows and dc columns, or false if off the board.
func (s Square) offset(dr, dc int) (Square, bool) {
	r, c := s.Row()+dr, s.Col()+dc
	if r < 0 || r > 7 || c < 0 || c > 7 {
		return NoSquare, false
	}
	return NewSquare(r, c), true
}
