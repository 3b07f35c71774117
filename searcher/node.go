package searcher

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Reaganak40/chessai/game"
	"github.com/samber/lo"
)

var (
	ErrDuplicateChild = errors.New("child already attached for move")
	ErrMissingChild   = errors.New("no child attached for move")
)

// Stats are the playout results recorded at a node.
type Stats struct {
	WhiteWins int
	BlackWins int
	Draws     int
}

func (s Stats) Visits() int {
	return s.WhiteWins + s.BlackWins + s.Draws
}

// Wins returns the wins for c.
func (s Stats) Wins(c game.Color) int {
	if c == game.White {
		return s.WhiteWins
	}
	return s.BlackWins
}

// Node is a position materialized in the search tree. Nodes are owned by the tree; one-ply
// lookahead uses Scratch, which never links anything into the tree.
type Node struct {
	parent   *Node
	move     game.Move
	position *game.Position
	children map[game.Move]*Node
	stats    Stats
}

func NewRoot(position *game.Position) *Node {
	return &Node{position: position, children: make(map[game.Move]*Node)}
}

func (n *Node) Position() *game.Position {
	return n.position
}

// Parent returns nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Move returns the move that led here from the parent; false for the root.
func (n *Node) Move() (game.Move, bool) {
	return n.move, n.parent != nil
}

func (n *Node) Stats() Stats {
	return n.stats
}

// SetStats overwrites the statistics, used when restoring a snapshot.
func (n *Node) SetStats(s Stats) {
	n.stats = s
}

func (n *Node) Visits() int {
	return n.stats.Visits()
}

// Child returns the attached child for move, if any.
func (n *Node) Child(move game.Move) (*Node, bool) {
	child, ok := n.children[move]
	return child, ok
}

func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Moves returns the moves of the attached children in board order.
func (n *Node) Moves() []game.Move {
	moves := lo.Keys(n.children)
	slices.SortFunc(moves, func(a, b game.Move) int {
		if a.From != b.From {
			return int(a.From) - int(b.From)
		}
		return int(a.To) - int(b.To)
	})
	return moves
}

// CreateChild plays move and attaches the resulting node.
func (n *Node) CreateChild(move game.Move) (*Node, error) {
	if _, ok := n.children[move]; ok {
		return nil, fmt.Errorf("%v: %w", move, ErrDuplicateChild)
	}
	position, err := n.position.Play(move)
	if err != nil {
		return nil, err
	}
	child := &Node{
		parent:   n,
		move:     move,
		position: position,
		children: make(map[game.Move]*Node),
	}
	n.children[move] = child
	return child, nil
}

// Scratch plays move without touching the tree. The result belongs to the caller.
func (n *Node) Scratch(move game.Move) (*game.Position, error) {
	return n.position.Play(move)
}

// Walk returns the child for move, creating it when create is set.
func (n *Node) Walk(move game.Move, create bool) (*Node, error) {
	if child, ok := n.children[move]; ok {
		return child, nil
	}
	if !create {
		return nil, fmt.Errorf("%v: %w", move, ErrMissingChild)
	}
	return n.CreateChild(move)
}

// Detach removes n from its parent's children. The root cannot be detached.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	delete(n.parent.children, n.move)
	n.parent = nil
}

// Prune drops every child of n.
func (n *Node) Prune() {
	for _, child := range n.children {
		child.parent = nil
	}
	clear(n.children)
}

// Size counts n and all of its descendants.
func (n *Node) Size() int {
	size := 0
	n.Walkthrough(func(*Node) { size++ })
	return size
}

// Walkthrough visits n and its descendants in pre-order, children in board order.
func (n *Node) Walkthrough(visit func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(node)
		moves := node.Moves()
		for i := len(moves) - 1; i >= 0; i-- {
			stack = append(stack, node.children[moves[i]])
		}
	}
}

func (n *Node) record(outcome game.Outcome) {
	switch outcome {
	case game.WhiteWon:
		n.stats.WhiteWins++
	case game.BlackWon:
		n.stats.BlackWins++
	default:
		n.stats.Draws++
	}
}
