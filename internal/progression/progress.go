package progression

import "sort"

// ThresholdTable maps a rank to the minimum XP needed to hold it. The client
// copy must mirror the server's table; the server never sends the previous
// rank's threshold.
type ThresholdTable map[int]int

// DefaultThresholds mirrors the backend rank table.
func DefaultThresholds() ThresholdTable {
	return ThresholdTable{
		1: 0,
		2: 100,
		3: 250,
		4: 500,
		5: 1000,
	}
}

// Previous returns the threshold the learner last crossed, the floor of the
// XP band that rank covers. It is 0 for the first rank and for ranks the
// table does not know.
func (t ThresholdTable) Previous(rank int) int {
	if rank <= 1 {
		return 0
	}
	return t[rank]
}

// Ranks returns the table's ranks in ascending order.
func (t ThresholdTable) Ranks() []int {
	ranks := make([]int, 0, len(t))
	for r := range t {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	return ranks
}

// Progress is the display state of the rank progress bar.
type Progress struct {
	// Fraction is Raw clamped to [0, 1].
	Fraction float64
	// Raw is the unclamped (xp - prev) / (next - prev).
	Raw float64
	// NextLabel is the next threshold, or "MAX" at the top rank.
	NextLabel string
	Max       bool
	// OutOfRange reports a state the threshold table cannot explain,
	// usually a stale table. The bar is still drawn, clamped.
	OutOfRange bool
}

// Percent returns Fraction as a whole-number percentage.
func (p Progress) Percent() int {
	return int(p.Fraction * 100)
}

// Compute derives the progress bar for state, using table for the floor of
// the current rank's band.
func Compute(state UserState, table ThresholdTable) Progress {
	if state.NextRank.Threshold.Max {
		return Progress{Fraction: 1, Raw: 1, NextLabel: "MAX", Max: true}
	}

	prev := table.Previous(state.Rank)
	next := state.NextRank.Threshold.Value
	p := Progress{NextLabel: state.NextRank.Threshold.String()}

	span := next - prev
	if span <= 0 {
		p.Fraction = 1
		p.Raw = 1
		p.OutOfRange = true
		return p
	}

	p.Raw = float64(state.XP-prev) / float64(span)
	p.Fraction = p.Raw
	switch {
	case p.Raw < 0:
		p.Fraction = 0
		p.OutOfRange = true
	case p.Raw > 1:
		p.Fraction = 1
		p.OutOfRange = true
	}
	return p
}

// Change describes the difference between two consecutive user states.
type Change struct {
	Prev     UserState
	Next     UserState
	XPDelta  int
	RankedUp bool
}

// Diff compares prev with next.
func Diff(prev, next UserState) Change {
	return Change{
		Prev:     prev,
		Next:     next,
		XPDelta:  next.XP - prev.XP,
		RankedUp: next.Rank > prev.Rank,
	}
}
