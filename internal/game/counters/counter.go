package counters

import (
	"maps"
	"slices"
)

// Counters holds a player's tallies. Missing entries read as zero and a
// tally that drops to zero is removed, so two sets with the same counts
// always compare equal.
type Counters struct {
	tally map[CounterType]int
}

// NewCounters creates an empty set.
func NewCounters() *Counters {
	return &Counters{tally: make(map[CounterType]int)}
}

// Get returns the current count of t.
func (cs *Counters) Get(t CounterType) int {
	return cs.tally[t]
}

// Increment adds amount to t and returns the new count. Non-positive
// amounts are ignored.
func (cs *Counters) Increment(t CounterType, amount int) int {
	if amount > 0 {
		cs.tally[t] += amount
	}
	return cs.tally[t]
}

// Decrement subtracts amount from t, clamping at zero, and returns the new
// count.
func (cs *Counters) Decrement(t CounterType, amount int) int {
	if amount <= 0 {
		return cs.tally[t]
	}
	n := cs.tally[t] - amount
	if n <= 0 {
		delete(cs.tally, t)
		return 0
	}
	cs.tally[t] = n
	return n
}

// ResetTurn drops every per-turn tally.
func (cs *Counters) ResetTurn() {
	maps.DeleteFunc(cs.tally, func(t CounterType, _ int) bool { return t.PerTurn() })
}

// Copy returns an independent copy.
func (cs *Counters) Copy() *Counters {
	return &Counters{tally: maps.Clone(cs.tally)}
}

// Len reports how many tallies are non-zero.
func (cs *Counters) Len() int {
	return len(cs.tally)
}

// CounterView is the serialisable form of one tally.
type CounterView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ToView lists the tallies ordered by name.
func (cs *Counters) ToView() []CounterView {
	names := slices.Sorted(maps.Keys(cs.tally))
	views := make([]CounterView, 0, len(names))
	for _, name := range names {
		views = append(views, CounterView{Name: string(name), Count: cs.tally[name]})
	}
	return views
}
