package main

import (
	"sort"
	"sync"
)

// solutionSet owns the best solution found so far and keeps the top nr
// distinct solutions offered to it. It is safe for concurrent use.
type solutionSet struct {
	mu      sync.Mutex
	best    solution
	hasBest bool
	set     []solution
	seen    map[string]bool
	nr      int

	// onBest, if set, is called with every new best outside the lock.
	onBest func(solution)
}

func newSolutionSet(size int) *solutionSet {
	if size < 1 {
		size = 1
	}
	return &solutionSet{set: make([]solution, 0, size+1), seen: make(map[string]bool), nr: size}
}

// bestFitness lets callers skip building a solution that can't win.
func (ss *solutionSet) bestFitness() (float64, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.best.fitness, ss.hasBest
}

// beats reports whether fitness would replace the current best.
func (ss *solutionSet) beats(fitness float64) bool {
	f, ok := ss.bestFitness()
	return !ok || fitness > f
}

// offerBest installs s as the new best only if its fitness is strictly
// higher than the current best. It returns true if s was installed.
func (ss *solutionSet) offerBest(s solution) bool {
	ss.mu.Lock()
	if ss.hasBest && s.fitness <= ss.best.fitness {
		ss.mu.Unlock()
		return false
	}
	ss.best = s
	ss.hasBest = true
	ss.addLocked(s)
	cb := ss.onBest
	ss.mu.Unlock()

	if cb != nil {
		cb(s)
	}
	return true
}

// return true if we added s to the set
func (ss *solutionSet) add(s solution) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.addLocked(s)
}

func (ss *solutionSet) addLocked(s solution) bool {
	str := s.String()
	if ss.seen[str] {
		return false
	}

	if len(ss.set) >= ss.nr {
		if s.fitness <= ss.set[len(ss.set)-1].fitness {
			return false
		}
	}
	ss.seen[str] = true

	ss.set = append(ss.set, s)
	sort.SliceStable(ss.set, func(i, j int) bool { return ss.set[i].fitness > ss.set[j].fitness })

	if len(ss.set) > ss.nr {
		ss.set = ss.set[:ss.nr]
	}

	return true
}

// result returns the best solution and the other retained solutions in
// descending order of fitness.
func (ss *solutionSet) result() (solution, []solution) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var others []solution
	for _, s := range ss.set {
		if s.String() != ss.best.String() {
			others = append(others, s)
		}
	}
	return ss.best, others
}
