package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
)

// climber runs the hill-climbing search for one worker. It owns its parent
// key and counters; the only shared state is the solution set.
type climber struct {
	id  int
	ct  []byte
	tab *tables
	sc  SearchConfig
	rng *rand.Rand

	parent key
	child  key
	pt     []byte
	evals  int64

	best *solutionSet
	m    *metrics
	log  *slog.Logger
}

func newClimber(id int, ct []byte, tab *tables, sc SearchConfig, start key, seed int64, best *solutionSet, m *metrics, log *slog.Logger) *climber {
	return &climber{
		id:     id,
		ct:     ct,
		tab:    tab,
		sc:     sc,
		rng:    rand.New(rand.NewSource(seed)),
		parent: start.clone(),
		child:  make(key, len(start)),
		pt:     make([]byte, len(ct)),
		best:   best,
		m:      m,
		log:    log.With("worker", id),
	}
}

// budget is how many non-improving candidates in a row end the search:
// coefficient * period^2 / length.
func (c *climber) budget() int64 {
	p := int64(c.parent.period())
	return c.sc.BudgetCoefficient * p * p / int64(len(c.ct))
}

// score decrypts the ciphertext under k into c.pt and returns its fitness.
func (c *climber) score(k key) (float64, error) {
	c.evals++
	if err := decrypt(c.pt, c.ct, k); err != nil {
		return 0, fmt.Errorf("internal: %w", err)
	}
	return c.tab.fitness(c.pt)
}

// run climbs until budget candidates in a row fail to beat the best, or
// ctx is done. Each pass re-randomizes one column at a time and improves
// it by random swaps while the other columns stay fixed.
func (c *climber) run(ctx context.Context) error {
	var bigcount int64
	budget := c.budget()
	period := c.parent.period()

	c.log.Debug("climber starting", "budget", budget, "stagnation_limit", c.sc.StagnationLimit)

	for bigcount < budget {
		for j := 0; j < period; j++ {
			if ctx.Err() != nil {
				c.log.Debug("climber cancelled", "evaluations", c.evals)
				return nil
			}

			c.parent[j].randomize(c.rng)
			fitp, err := c.score(c.parent)
			if err != nil {
				return err
			}
			c.m.restarts.Inc()
			start := c.evals

			count := 0
			for count < c.sc.StagnationLimit {
				c.parent.copyTo(c.child)
				c.child[j].randomSwap(c.rng)
				fitc, err := c.score(c.child)
				if err != nil {
					return err
				}

				if fitc > fitp {
					c.child.copyTo(c.parent)
					fitp = fitc
					count = 0
				} else {
					count++
				}

				if c.best.beats(fitc) && c.best.offerBest(newSolution(c.child, c.pt, fitc, c.id, c.evals)) {
					bigcount = 0
					c.m.improvements.Inc()
					c.m.bestFitness.Set(fitc)
					c.log.Debug("new best", "fitness", fitc, "column", j+1, "evaluations", c.evals)
				} else {
					bigcount++
				}
			}

			c.m.evaluations.Add(float64(c.evals - start + 1))

			// Keep the local optimum as a runner-up.
			if _, err := c.score(c.parent); err != nil {
				return err
			}
			c.best.add(newSolution(c.parent, c.pt, fitp, c.id, c.evals))
		}
	}

	c.log.Debug("climber finished", "evaluations", c.evals)
	return nil
}
