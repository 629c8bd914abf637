package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/spvkit/shader"
)

// TranslateAll translates independent configurations concurrently, at most
// parallelism at a time. Zero or negative parallelism means no limit. The
// first error cancels the remaining translations.
func TranslateAll(ctx context.Context, cfgs []Configuration, opts shader.Options, parallelism int) ([]*Program, error) {
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	out := make([]*Program, len(cfgs))
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := Translate(cfg, opts)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CompileAll translates the jobs concurrently and then creates their
// pipelines on dev in order.
func CompileAll(ctx context.Context, dev Device, jobs []Job, opts shader.Options, parallelism int) ([]*Pipeline, error) {
	cfgs := make([]Configuration, len(jobs))
	for i, j := range jobs {
		cfgs[i] = j.Config
	}
	progs, err := TranslateAll(ctx, cfgs, opts, parallelism)
	if err != nil {
		return nil, fail(opts.Reporter, "translator", err)
	}
	out := make([]*Pipeline, len(jobs))
	for i, p := range progs {
		pl, err := build(ctx, dev, p, jobs[i].State, opts.Reporter)
		if err != nil {
			return nil, err
		}
		out[i] = pl
	}
	return out, nil
}
