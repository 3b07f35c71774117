package searcher

import (
	"errors"
	"fmt"
	"math"

	"github.com/Reaganak40/chessai/agent"
	"github.com/Reaganak40/chessai/experiments/metrics"
	"github.com/Reaganak40/chessai/game"
	"github.com/Reaganak40/chessai/meta"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

var ErrIllegalMove = errors.New("move is not legal")

type Option func(mcts *MCTS)

// Segment is one step of a path from the root, checked against the position it leads to.
type Segment struct {
	Move      game.Move
	StateHash uint64
}

type MCTS struct {
	root                  *Node
	resume                *Node
	policy                *agent.Heuristic
	seed                  uint64
	cSquared              float64
	expansionDenominator  int
	simulationDenominator int
	maxPlies              int
	metrics               metrics.Collector
}

// Iteration reports one pass of the search.
type Iteration struct {
	Expanded        *Node // node attached by this iteration, if any
	SelectionDepth  int
	SimulationPlies int
	Outcome         game.Outcome
	Truncated       bool
}

func WithExploration(cSquared float64) Option {
	return func(m *MCTS) {
		if cSquared > 0 {
			m.cSquared = cSquared
		}
	}
}

func WithExpansionDenominator(denominator int) Option {
	return func(m *MCTS) {
		if denominator >= 0 {
			m.expansionDenominator = denominator
		}
	}
}

func WithSimulationDenominator(denominator int) Option {
	return func(m *MCTS) {
		if denominator >= 0 {
			m.simulationDenominator = denominator
		}
	}
}

func WithMaxPlies(plies int) Option {
	return func(m *MCTS) {
		if plies > 0 {
			m.maxPlies = plies
		}
	}
}

// WithSeed fixes the random source. A zero seed draws one from the system entropy pool.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func NewMCTS(root *Node, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		root:                  root,
		resume:                root,
		cSquared:              meta.EXPLORATION,
		expansionDenominator:  meta.EXPANSION_DENOMINATOR,
		simulationDenominator: meta.SIMULATION_DENOMINATOR,
		maxPlies:              meta.MAX_PLIES,
		metrics:               metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.seed == 0 {
		m.seed = frand.Uint64n(math.MaxUint64) + 1
	}
	m.policy = agent.NewHeuristic(rand.New(rand.NewSource(m.seed)))
	return m
}

func (m *MCTS) Root() *Node {
	return m.root
}

// Resume returns the node selection starts from.
func (m *MCTS) Resume() *Node {
	return m.resume
}

func (m *MCTS) Seed() uint64 {
	return m.seed
}

// Search runs the given number of iterations and summarizes them.
func (m *MCTS) Search(iterations int) (metrics.SearchMetric, error) {
	m.metrics.Start()
	for i := 0; i < iterations; i++ {
		if _, err := m.Iterate(); err != nil {
			return m.metrics.Complete(), err
		}
	}
	return m.metrics.Complete(), nil
}

// Iterate runs selection, expansion, simulation and backpropagation once. Afterwards the tree
// holds exactly one node more than before, unless selection ended on a terminal position. On
// error the tree is left as it was.
func (m *MCTS) Iterate() (Iteration, error) {
	var it Iteration

	leaf, created, depth, err := m.selectThenExpand()
	if err != nil {
		return it, fmt.Errorf("failed to select: %w", err)
	}
	it.SelectionDepth = depth

	outcome, plies, truncated, err := m.rollout(leaf)
	// Nodes created by the playout are never kept.
	leaf.Prune()
	if err != nil {
		if created != nil {
			created.Detach()
		}
		return it, fmt.Errorf("failed to simulate: %w", err)
	}
	it.Expanded = created
	it.Outcome, it.SimulationPlies, it.Truncated = outcome, plies, truncated

	backup(leaf, outcome)

	m.metrics.AddIteration(metrics.IterationMetric{
		SelectionDepth:  depth,
		SimulationPlies: plies,
		Outcome:         outcome,
		Truncated:       truncated,
	})
	log.Debug().
		Int("depth", depth).
		Int("plies", plies).
		Str("outcome", outcome.String()).
		Bool("truncated", truncated).
		Msg("iteration complete")
	return it, nil
}

// selectThenExpand descends from the resume node and returns the node to simulate from, along
// with the node this call attached to the tree, if any. Selecting an unexplored move attaches it
// and ends the descent, so that move is also the expansion.
func (m *MCTS) selectThenExpand() (leaf, created *Node, depth int, err error) {
	node := m.resume
	for node.HasChildren() {
		moves, err := node.position.LegalMoves()
		if err != nil {
			return nil, nil, depth, err
		}
		if len(moves) == 0 {
			return node, nil, depth, nil
		}

		child, created, unexplored, err := m.pickChild(node, moves)
		if err != nil {
			return nil, nil, depth, err
		}
		depth++
		if unexplored && !child.HasChildren() {
			return child, created, depth, nil
		}
		node = child
	}

	moves, err := node.position.LegalMoves()
	if err != nil {
		return nil, nil, depth, err
	}
	if len(moves) == 0 { // Terminal node
		return node, nil, depth, nil
	}
	move, err := m.policy.Suggest(node.position, moves, m.expansionDenominator)
	if err != nil {
		return nil, nil, depth, err
	}
	child, err := node.CreateChild(move)
	if err != nil {
		return nil, nil, depth, err
	}
	return child, child, depth + 1, nil
}

// pickChild chooses among the legal moves of node, which has at least one attached child.
// Moves without an attached child, or whose child was never visited, have infinite priority;
// otherwise the child with the best UCT score wins. Ties go to the heuristic policy.
func (m *MCTS) pickChild(node *Node, moves []game.Move) (child, created *Node, unexplored bool, err error) {
	candidates := lo.Filter(moves, func(move game.Move, _ int) bool {
		child, ok := node.children[move]
		return !ok || child.Visits() == 0
	})
	if len(candidates) > 0 {
		move, err := m.breakTie(node, candidates)
		if err != nil {
			return nil, nil, false, err
		}
		if child, ok := node.children[move]; ok {
			return child, nil, true, nil
		}
		child, err := node.CreateChild(move)
		return child, child, true, err
	}

	policy := newUCT(m.cSquared, node.Visits())
	mover := node.position.Turn()
	maxScore := math.Inf(-1)
	var best []game.Move
	for _, move := range moves {
		child := node.children[move]
		score := policy.evaluate(reward(child.stats, mover), child.Visits())
		switch {
		case score > maxScore:
			maxScore = score
			best = append(best[:0], move)
		case score == maxScore:
			best = append(best, move)
		}
	}
	move, err := m.breakTie(node, best)
	if err != nil {
		return nil, nil, false, err
	}
	return node.children[move], nil, false, nil
}

func (m *MCTS) breakTie(node *Node, moves []game.Move) (game.Move, error) {
	if len(moves) == 1 {
		return moves[0], nil
	}
	return m.policy.Suggest(node.position, moves, m.expansionDenominator)
}

// rollout plays the policy from leaf until the game ends. The playout is attached below leaf and
// the caller prunes it. A playout reaching the ply cap is scored as a draw.
func (m *MCTS) rollout(leaf *Node) (outcome game.Outcome, plies int, truncated bool, err error) {
	node := leaf
	for {
		moves, err := node.position.LegalMoves()
		if err != nil {
			return game.NoOutcome, plies, false, err
		}
		if len(moves) == 0 { // Game over
			return node.position.Outcome(), plies, false, nil
		}
		if plies >= m.maxPlies {
			return game.Drawn, plies, true, nil
		}

		move, err := m.policy.Suggest(node.position, moves, m.simulationDenominator)
		if err != nil {
			return game.NoOutcome, plies, false, err
		}
		node, err = node.CreateChild(move)
		if err != nil {
			return game.NoOutcome, plies, false, err
		}
		plies++
	}
}

// backup records outcome on newNode and every ancestor up to the root.
func backup(newNode *Node, outcome game.Outcome) {
	node := newNode
	for node != nil {
		node.record(outcome)
		node = node.parent
	}
}

// Advance moves the resume point to the child for move, attaching it if needed.
func (m *MCTS) Advance(move game.Move) error {
	moves, err := m.resume.position.LegalMoves()
	if err != nil {
		return err
	}
	if !lo.Contains(moves, move) {
		return fmt.Errorf("%v in %v: %w", move, m.resume.position.FEN(), ErrIllegalMove)
	}
	child, err := m.resume.Walk(move, true)
	if err != nil {
		return err
	}
	m.resume = child
	m.metrics.SetTreeReset(false)
	return nil
}

// ResumeFrom relocates the resume point by following path from the root. If the path leaves
// the tree or a position does not match its recorded hash, search resumes from the root and
// false is returned.
func (m *MCTS) ResumeFrom(path []Segment) bool {
	node := traverse(m.root, path)
	if node == nil {
		m.resume = m.root
		m.metrics.SetTreeReset(true)
		return false
	}
	m.resume = node
	m.metrics.SetTreeReset(false)
	return true
}

func traverse(root *Node, path []Segment) *Node {
	node := root
	for _, segment := range path {
		child, ok := node.Child(segment.Move)
		if !ok { // Node has not expanded this move
			return nil
		}
		if hash := child.position.Hash(); hash != segment.StateHash {
			log.Warn().Msgf("node's state hash %d does not match segment's state hash %d", hash, segment.StateHash)
			return nil
		}
		node = child
	}
	return node
}

// Path returns the segments leading from the root to the resume point.
func (m *MCTS) Path() []Segment {
	var path []Segment
	for node := m.resume; node.parent != nil; node = node.parent {
		path = append(path, Segment{Move: node.move, StateHash: node.position.Hash()})
	}
	return lo.Reverse(path)
}

// BestMove returns the most visited move at the resume point.
func (m *MCTS) BestMove() (game.Move, error) {
	return findBestMove(m.resume)
}

func findBestMove(node *Node) (game.Move, error) {
	moves := node.Moves()
	if len(moves) == 0 {
		return game.Move{}, fmt.Errorf("no searched moves in %v: %w", node.position.FEN(), ErrMissingChild)
	}
	return lo.MaxBy(moves, func(a, b game.Move) bool {
		return node.children[a].Visits() > node.children[b].Visits()
	}), nil
}

// Policy returns the visit share of each searched move at the resume point.
func (m *MCTS) Policy() map[game.Move]float64 {
	policy := make(map[game.Move]float64, len(m.resume.children))
	total := 0
	for _, child := range m.resume.children {
		total += child.Visits()
	}
	if total == 0 {
		return policy
	}
	for move, child := range m.resume.children {
		policy[move] = float64(child.Visits()) / float64(total)
	}
	return policy
}
