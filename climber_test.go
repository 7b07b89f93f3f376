package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type climbFixture struct {
	ct       []byte
	start    key
	baseline float64
	tab      *tables
}

func newClimbFixture(t *testing.T, period int) climbFixture {
	t.Helper()
	tab := defaultTestTables(t)

	ct, err := encrypt(fixturePlaintext(t), randomKey(t, 31, period))
	require.NoError(t, err)

	pr, err := fixedPeriod(ct, period)
	require.NoError(t, err)
	start := initialKey(pr.slices, tab.monograms, false)

	pt := make([]byte, len(ct))
	require.NoError(t, decrypt(pt, ct, start))
	baseline, err := tab.fitness(pt)
	require.NoError(t, err)

	return climbFixture{ct: ct, start: start, baseline: baseline, tab: tab}
}

func TestClimber_Budget(t *testing.T) {
	f := newClimbFixture(t, 3)
	sc := Default().Search

	c := newClimber(0, f.ct, f.tab, sc, f.start, 1, newSolutionSet(1), newMetrics(), discardLogger())
	assert.Equal(t, int64(5000000*9/len(f.ct)), c.budget())
}

func TestClimber_Run(t *testing.T) {
	f := newClimbFixture(t, 3)
	sc := Default().Search
	sc.BudgetCoefficient = 1000000

	ss := newSolutionSet(3)
	var bests []float64
	ss.onBest = func(s solution) {
		bests = append(bests, s.fitness)
		require.NoError(t, s.key.validate())
	}
	ss.offerBest(newSolution(f.start, nil, f.baseline, -1, 0))

	m := newMetrics()
	c := newClimber(0, f.ct, f.tab, sc, f.start, 42, ss, m, discardLogger())
	require.NoError(t, c.run(context.Background()))

	for i := 1; i < len(bests); i++ {
		assert.Greater(t, bests[i], bests[i-1], "best fitness must strictly increase")
	}

	best, _ := ss.result()
	assert.Greater(t, best.fitness, f.baseline)
	assert.Equal(t, 0, best.worker)
	require.NoError(t, best.key.validate())
	require.NoError(t, c.parent.validate())

	// The recorded plaintext is what the recorded key decrypts to.
	pt := make([]byte, len(f.ct))
	require.NoError(t, decrypt(pt, f.ct, best.key))
	assert.Equal(t, string(pt), best.String())
	fit, err := f.tab.fitness(pt)
	require.NoError(t, err)
	assert.InDelta(t, best.fitness, fit, 1e-9)

	assert.GreaterOrEqual(t, c.evals, int64(3*sc.StagnationLimit))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.restarts), 3.0)
	assert.Equal(t, float64(len(bests)-1), testutil.ToFloat64(m.improvements))
}

func TestClimber_Cancelled(t *testing.T) {
	f := newClimbFixture(t, 3)
	sc := Default().Search
	sc.BudgetCoefficient = 1 << 40

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newClimber(0, f.ct, f.tab, sc, f.start, 1, newSolutionSet(1), newMetrics(), discardLogger())
	require.NoError(t, c.run(ctx))
	assert.Zero(t, c.evals)
	assert.Equal(t, f.start, c.parent)
}

func TestClimber_DoesNotShareStartKey(t *testing.T) {
	f := newClimbFixture(t, 2)
	sc := Default().Search
	sc.BudgetCoefficient = 2000

	start := f.start.clone()
	c := newClimber(0, f.ct, f.tab, sc, f.start, 7, newSolutionSet(1), newMetrics(), discardLogger())
	require.NoError(t, c.run(context.Background()))
	assert.Equal(t, start, f.start)
}
