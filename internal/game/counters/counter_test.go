package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementAndGet(t *testing.T) {
	cs := NewCounters()
	assert.Equal(t, 0, cs.Get(JadeGolem))
	assert.Equal(t, 1, cs.Increment(JadeGolem, 1))
	assert.Equal(t, 3, cs.Increment(JadeGolem, 2))
	assert.Equal(t, 3, cs.Increment(JadeGolem, -4), "non-positive amounts are ignored")
}

func TestDecrementClampsAndRemoves(t *testing.T) {
	cs := NewCounters()
	cs.Increment(CardsPlayed, 2)

	assert.Equal(t, 1, cs.Decrement(CardsPlayed, 1))
	assert.Equal(t, 0, cs.Decrement(CardsPlayed, 5))
	assert.Zero(t, cs.Len())
	assert.Equal(t, 0, cs.Decrement(JadeGolem, 1))
	assert.Zero(t, cs.Len(), "decrementing a missing tally creates nothing")
}

func TestResetTurnKeepsGameCounters(t *testing.T) {
	cs := NewCounters()
	cs.Increment(JadeGolem, 4)
	cs.Increment(CardsPlayed, 2)
	cs.Increment(RacePlayed("elemental"), 1)

	cs.ResetTurn()
	assert.Equal(t, 4, cs.Get(JadeGolem))
	assert.Zero(t, cs.Get(CardsPlayed))
	assert.Zero(t, cs.Get(RacePlayed("elemental")))
	assert.Equal(t, 1, cs.Len())
}

func TestCopyIsIndependent(t *testing.T) {
	cs := NewCounters()
	cs.Increment(MinionsPlayed, 1)
	cp := cs.Copy()
	cs.Increment(MinionsPlayed, 1)

	assert.Equal(t, 1, cp.Get(MinionsPlayed))
	assert.Equal(t, 2, cs.Get(MinionsPlayed))
}

func TestToViewSorted(t *testing.T) {
	cs := NewCounters()
	cs.Increment(SpellsCast, 1)
	cs.Increment(CardsPlayed, 1)
	views := cs.ToView()
	assert.Equal(t, []CounterView{{Name: "cards_played", Count: 1}, {Name: "spells_cast", Count: 1}}, views)
}
