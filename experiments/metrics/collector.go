package metrics

import (
	"time"

	"github.com/Reaganak40/chessai/game"
	"gonum.org/v1/gonum/stat"
)

// IterationMetric describes one selection-expansion-simulation-backpropagation pass.
type IterationMetric struct {
	SelectionDepth  int
	SimulationPlies int
	Outcome         game.Outcome
	Truncated       bool // simulation hit the ply cap and was scored as a draw
}

type SearchMetric struct {
	Duration     time.Duration
	Iterations   int
	FullPlayouts int
	Truncated    int
	WhiteWins    int
	BlackWins    int
	Draws        int
	MaxDepth     int
	MeanPlies    float64
	StdDevPlies  float64
	IsTreeReset  bool
}

type MoveMetric struct {
	Ply    int
	Player game.Color
	Move   game.Move
	Visits int
	SearchMetric
}

type GameMetric struct {
	Outcome   game.Outcome
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Plies     int
}

type Collector interface {
	Start()
	SetTreeReset(value bool)
	AddIteration(metric IterationMetric)
	Complete() SearchMetric
}

type collector struct {
	startTime   time.Time
	isTreeReset bool
	iterations  []IterationMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
	m.iterations = m.iterations[:0]
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset = value
}

func (m *collector) AddIteration(metric IterationMetric) {
	m.iterations = append(m.iterations, metric)
}

func (m *collector) Complete() SearchMetric {
	metric := SearchMetric{
		Duration:    time.Since(m.startTime),
		Iterations:  len(m.iterations),
		IsTreeReset: m.isTreeReset,
	}
	plies := make([]float64, 0, len(m.iterations))
	for _, it := range m.iterations {
		plies = append(plies, float64(it.SimulationPlies))
		metric.MaxDepth = max(metric.MaxDepth, it.SelectionDepth)
		if it.Truncated {
			metric.Truncated++
		} else {
			metric.FullPlayouts++
		}
		switch it.Outcome {
		case game.WhiteWon:
			metric.WhiteWins++
		case game.BlackWon:
			metric.BlackWins++
		default:
			metric.Draws++
		}
	}
	switch len(plies) {
	case 0:
	case 1:
		metric.MeanPlies = plies[0]
	default:
		metric.MeanPlies, metric.StdDevPlies = stat.MeanStdDev(plies, nil)
	}
	return metric
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()                              {}
func (m *dummyCollector) SetTreeReset(value bool)             {}
func (m *dummyCollector) AddIteration(metric IterationMetric) {}
func (m *dummyCollector) Complete() SearchMetric              { return SearchMetric{} }
