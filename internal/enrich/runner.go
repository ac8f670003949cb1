package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the requests a Runner runs at once. Requests
// run one at a time unless the host raises the limit.
const DefaultConcurrency = 1

// Outcome pairs an entity with its enrichment result.
type Outcome struct {
	Ref    string
	Result *Result
	Err    error
}

// Runner enriches many entities with one Orchestrator, at most limit at a time.
type Runner struct {
	orchestrator *Orchestrator
	limit        int
}

// NewRunner creates a Runner running at most limit requests at once.
func NewRunner(o *Orchestrator, limit int) *Runner {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	return &Runner{orchestrator: o, limit: limit}
}

// EnrichAll enriches every ref and returns the outcomes in input order. A
// failed request does not stop the others; a cancelled ctx does.
func (r *Runner) EnrichAll(ctx context.Context, refs []string, opts Options) []Outcome {
	outcomes := make([]Outcome, len(refs))

	var g errgroup.Group

	g.SetLimit(r.limit)

	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Ref: ref, Err: err}
				return nil
			}

			res, err := r.orchestrator.Enrich(ctx, ref, opts)
			outcomes[i] = Outcome{Ref: ref, Result: res, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

// Failed returns the outcomes that ended with an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome

	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}

	return out
}
