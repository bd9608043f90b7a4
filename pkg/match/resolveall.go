package match

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// progressEvery bounds the frequency of progress callbacks.
const progressEvery = 10

// ResolveAll resolves every input row, preserving input order 1:1 in the
// result slice. With workers > 1 the rows are fanned out across
// goroutines; each writes only its own slot, so ordering never depends
// on scheduling. Indexes are read-only by then, which is what makes the
// fan-out safe. onProgress, when set, receives aggregated counts every
// few rows and once at completion.
func ResolveAll(ctx context.Context, m *Matcher, rows []InputRow, workers int, onProgress func(done, total int)) ([]Outcome, error) {
	out := make([]Outcome, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	report := func(done int) {
		if onProgress != nil && (done%progressEvery == 0 || done == len(rows)) {
			onProgress(done, len(rows))
		}
	}

	if workers <= 1 {
		for i := range rows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = m.Resolve(rows[i])
			report(i + 1)
		}
		return out, nil
	}

	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(rows); start += progressEvery {
		end := min(start+progressEvery, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = m.Resolve(rows[i])
			}
			report(int(done.Add(int64(end - start))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
