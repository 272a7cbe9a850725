package analyze

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jobshield-engine/internal/domain"
)

// AnalyzeBatch scores several postings concurrently. Each call to
// Analyze owns its accumulator, so the only coordination needed is one
// result slot per posting. The whole batch fails if any posting fails.
func (e *Engine) AnalyzeBatch(ctx context.Context, postings []domain.Posting) ([]domain.Result, error) {
	results := make([]domain.Result, len(postings))

	var g errgroup.Group
	for i, p := range postings {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Analyze(p)
			if err != nil {
				return fmt.Errorf("posting %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
