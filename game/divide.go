package game

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Divide runs Perft to depth-1 below every legal move of p, using up to workers goroutines.
// The first failure cancels the remaining work.
func Divide(ctx context.Context, p *Position, depth, workers int) (map[Move]uint64, error) {
	moves, err := p.LegalMoves()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	counts := make(map[Move]uint64, len(moves))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, m := range moves {
		m := m
		child, err := p.Play(m)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := Perft(child, max(depth-1, 0))
			if err != nil {
				return err
			}
			mu.Lock()
			counts[m] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
