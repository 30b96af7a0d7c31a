// CLAUDE:SUMMARY Bounded-parallel batch conversion with an end-of-run summary.
package convert

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/adoctext/docsource"
)

// Failure records one document the batch could not convert.
type Failure struct {
	Input string `json:"input"`
	Error string `json:"error"`
}

// Summary is the end-of-run accounting for a batch.
type Summary struct {
	RunID     string      `json:"run_id"`
	Started   time.Time   `json:"started"`
	Finished  time.Time   `json:"finished"`
	Succeeded []string    `json:"succeeded"`
	Failed    []Failure   `json:"failed"`
	Fixes     []FixRecord `json:"fixes"`
}

// Batch converts every descriptor with up to workers conversions in flight.
// A document that fails is recorded and the batch moves on; only context
// cancellation stops the run early.
func (c *Converter) Batch(ctx context.Context, docs []docsource.Descriptor, workers int) Summary {
	if workers < 1 {
		workers = 1
	}
	sum := Summary{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, d := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				sum.Failed = append(sum.Failed, Failure{Input: d.Input, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			res, err := c.Convert(ctx, d.Input, d.Output)
			mu.Lock()
			defer mu.Unlock()
			sum.Fixes = append(sum.Fixes, res.Fixes...)
			if err != nil {
				c.cfg.Logger.Error("conversion failed", "input", d.Input, "error", err)
				sum.Failed = append(sum.Failed, Failure{Input: d.Input, Error: err.Error()})
				return nil
			}
			sum.Succeeded = append(sum.Succeeded, d.Input)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures land in the summary

	sort.Strings(sum.Succeeded)
	sort.Slice(sum.Failed, func(i, j int) bool { return sum.Failed[i].Input < sum.Failed[j].Input })
	sum.Finished = time.Now().UTC()
	return sum
}
