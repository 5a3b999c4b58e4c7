package stats

import (
	"iter"
	"slices"
)

// tally counts values while remembering the order each was first seen.
type tally[K comparable] struct {
	counts map[K]int
	order  []K
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{counts: make(map[K]int)}
}

func (t *tally[K]) add(k K) {
	if _, seen := t.counts[k]; !seen {
		t.order = append(t.order, k)
	}
	t.counts[k]++
}

// mode returns the most frequent value. Among values sharing the maximum
// count, the one seen first in record order wins.
func (t *tally[K]) mode() (K, bool) {
	var (
		best  K
		count int
	)
	for _, k := range t.order {
		if c := t.counts[k]; c > count {
			best, count = k, c
		}
	}
	return best, count > 0
}

// ranked returns all values by descending count, ties in first-seen order.
func (t *tally[K]) ranked() []K {
	out := slices.Clone(t.order)
	slices.SortStableFunc(out, func(a, b K) int { return t.counts[b] - t.counts[a] })
	return out
}

// modeOf folds seq into a tally and returns its mode.
func modeOf[K comparable](seq iter.Seq[K]) (K, bool) {
	t := newTally[K]()
	for k := range seq {
		t.add(k)
	}
	return t.mode()
}

// project maps each element of seq through f.
func project[T, K any](seq iter.Seq[T], f func(T) K) iter.Seq[K] {
	return func(yield func(K) bool) {
		for v := range seq {
			if !yield(f(v)) {
				return
			}
		}
	}
}
