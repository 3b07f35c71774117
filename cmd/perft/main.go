package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/Reaganak40/chessai/game"
	"github.com/spf13/pflag"
)

func main() {
	fen := pflag.String("fen", "", "FEN string (defaults to the starting position)")
	depth := pflag.Int("depth", 0, "Perft depth (required)")
	divide := pflag.Bool("divide", false, "Print per-move node counts at the root")
	workers := pflag.Int("workers", runtime.NumCPU(), "Goroutines used by -divide")
	pflag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "--depth must be > 0")
		os.Exit(2)
	}

	position := game.StartingPosition()
	if *fen != "" {
		var err error
		position, err = game.PositionFromFEN(*fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FEN error: %v\n", err)
			os.Exit(2)
		}
	}

	start := time.Now()
	if *divide {
		counts, err := game.Divide(context.Background(), position, *depth, *workers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "perft error: %v\n", err)
			os.Exit(1)
		}
		moves := make([]game.Move, 0, len(counts))
		var sum uint64
		for m, n := range counts {
			moves = append(moves, m)
			sum += n
		}
		slices.SortFunc(moves, func(a, b game.Move) int { return strings.Compare(a.String(), b.String()) })
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, counts[m])
		}
		fmt.Printf("Total: %d (%v)\n", sum, time.Since(start))
		return
	}

	nodes, err := game.Perft(position, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "perft error: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	nps := float64(nodes) / max(elapsed.Seconds(), 1e-9)
	fmt.Printf("depth=%d nodes=%d time=%v nps=%.0f\n", *depth, nodes, elapsed, nps)
}
