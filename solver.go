package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// solver runs the whole attack on one ciphertext at a time:
// period, initial key, then the climbers.
type solver struct {
	cfg *Config
	tab *tables
	m   *metrics
	log *slog.Logger

	// progressOut receives a spinner while searching; nil disables it.
	progressOut io.Writer
}

func (sv *solver) findPeriod(ct []byte) (periodResult, error) {
	if p := sv.cfg.Search.Period; p > 0 {
		return fixedPeriod(ct, p)
	}
	return detectPeriod(ct, sv.cfg.Search)
}

func (sv *solver) solve(ctx context.Context, ct []byte) (*report, error) {
	start := time.Now()
	sc := sv.cfg.Search
	runID := uuid.NewString()
	log := sv.log.With("run_id", runID)

	rep, err := sv.search(ctx, ct, sc, log)
	elapsed := time.Since(start)
	sv.m.duration.Observe(elapsed.Seconds())
	if err != nil {
		sv.m.solved.WithLabelValues("failed").Inc()
		return nil, err
	}

	rep.RunID = runID
	rep.Elapsed = elapsed.Round(time.Millisecond).String()
	if rep.Cancelled {
		sv.m.solved.WithLabelValues("cancelled").Inc()
	} else {
		sv.m.solved.WithLabelValues("solved").Inc()
	}
	log.Info("search finished", "period", rep.Period, "fitness", rep.Fitness,
		"evaluations", rep.Evaluations, "elapsed", elapsed, "cancelled", rep.Cancelled)
	return rep, nil
}

func (sv *solver) search(ctx context.Context, ct []byte, sc SearchConfig, log *slog.Logger) (*report, error) {
	pr, err := sv.findPeriod(ct)
	if err != nil {
		return nil, err
	}
	log.Info("period found", "period", pr.period, "ioc", pr.ioc[len(pr.ioc)-1], "length", len(ct))
	sv.m.period.Set(float64(pr.period))

	k := initialKey(pr.slices, sv.tab.monograms, sc.InitFromLastSlice)
	pt := make([]byte, len(ct))
	if err := decrypt(pt, ct, k); err != nil {
		return nil, err
	}
	fit, err := sv.tab.fitness(pt)
	if err != nil {
		return nil, err
	}
	log.Debug("initial key", "key", k.String(), "fitness", fit)

	ss := newSolutionSet(sv.cfg.Output.TopN)
	var prog *progress
	if sv.progressOut != nil {
		prog = newProgress(sv.progressOut, pr.period)
		ss.onBest = prog.best
	}
	ss.offerBest(newSolution(k, pt, fit, -1, 0))
	sv.m.bestFitness.Set(fit)

	if sc.MaxRuntime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.MaxRuntime)
		defer cancel()
	}

	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	climbers := make([]*climber, sc.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range climbers {
		c := newClimber(i, ct, sv.tab, sc, k, seed+int64(i), ss, sv.m, log)
		climbers[i] = c
		g.Go(func() error { return c.run(gctx) })
	}
	err = g.Wait()
	prog.finish()
	if err != nil {
		return nil, err
	}

	best, others := ss.result()
	rep := newReport(ct, pr, best, others)
	for _, c := range climbers {
		rep.Evaluations += c.evals
	}
	rep.Cancelled = ctx.Err() != nil
	return rep, nil
}
