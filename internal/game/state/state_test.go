package state

import (
	"errors"
	"fmt"
	"testing"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minionDef(id, attack, health int) catalog.Definition {
	return catalog.Definition{ID: id, Name: fmt.Sprintf("minion-%d", id), Type: catalog.TypeMinion, Attack: attack, Health: health}
}

func TestHeroDamageAppliesArmorFirst(t *testing.T) {
	h := Hero{Health: 30, MaxHealth: 30}
	absorbed, dealt := h.TakeDamage(8)
	assert.Equal(t, 0, absorbed)
	assert.Equal(t, 8, dealt)
	assert.Equal(t, 22, h.Health)

	h = Hero{Health: 30, MaxHealth: 30, Armor: 5}
	absorbed, dealt = h.TakeDamage(8)
	assert.Equal(t, 5, absorbed)
	assert.Equal(t, 3, dealt)
	assert.Equal(t, 0, h.Armor)
	assert.Equal(t, 27, h.Health)
}

func TestHeroHealCapped(t *testing.T) {
	h := Hero{Health: 25, MaxHealth: 30}
	assert.Equal(t, 5, h.Heal(8))
	assert.Equal(t, 30, h.Health)
	assert.Equal(t, 0, h.Heal(3))
}

func TestMinionShieldAbsorbsWholeHit(t *testing.T) {
	m := NewInstance("m", minionDef(1, 2, 4))
	m.DivineShield = true

	dealt, popped := m.TakeDamage(6)
	assert.Zero(t, dealt)
	assert.True(t, popped)
	assert.False(t, m.DivineShield)
	assert.Equal(t, 4, m.Health)

	dealt, popped = m.TakeDamage(6)
	assert.Equal(t, 6, dealt)
	assert.False(t, popped)
	assert.False(t, m.Alive())
}

func TestManaClampCapsTemporary(t *testing.T) {
	m := ManaPool{Current: 9, Max: 9, Temporary: 3}
	m.Clamp()
	assert.Equal(t, 1, m.Temporary)
	assert.Equal(t, MaxMana, m.Available())

	m = ManaPool{Current: 12, Max: 11, Temporary: 2}
	m.Clamp()
	assert.Equal(t, MaxMana, m.Current)
	assert.Equal(t, MaxMana, m.Max)
	assert.Zero(t, m.Temporary)

	m = ManaPool{Current: 2, Max: 2, Temporary: -1}
	m.Clamp()
	assert.Zero(t, m.Temporary)
}

func TestManaSpendUsesTemporaryFirst(t *testing.T) {
	m := ManaPool{Current: 3, Max: 3, Temporary: 1}
	assert.False(t, m.Spend(5))
	assert.Equal(t, 3, m.Current)
	assert.True(t, m.Spend(2))
	assert.Equal(t, 0, m.Temporary)
	assert.Equal(t, 2, m.Current)

	m = ManaPool{Current: 14, Max: -2}
	m.Clamp()
	assert.Equal(t, 10, m.Current)
	assert.Equal(t, 0, m.Max)
}

func TestPlaceMinionRespectsBoardCap(t *testing.T) {
	g := New("g", 1, 0)
	p := g.Player(SideSelf)
	for i := range MaxBoardSize {
		pos, err := p.PlaceMinion(g.NewInstance(minionDef(i+1, 1, 1)), 0)
		require.NoError(t, err)
		assert.Equal(t, 0, pos)
	}
	_, err := p.PlaceMinion(g.NewInstance(minionDef(99, 1, 1)), 0)
	assert.ErrorIs(t, err, ErrZoneFull)
	assert.Equal(t, KindZoneFull, KindOf(err))
	assert.Len(t, p.Battlefield, MaxBoardSize)
}

func TestAddToHandBurnsOverflow(t *testing.T) {
	g := New("g", 1, 0)
	for i := range MaxHandSize {
		require.True(t, g.AddToHand(SideSelf, g.NewInstance(minionDef(i+1, 1, 1))))
	}
	assert.False(t, g.AddToHand(SideSelf, g.NewInstance(minionDef(50, 1, 1))))
	assert.Len(t, g.Player(SideSelf).Hand, MaxHandSize)
	assert.Equal(t, rules.EventCardBurned, g.Log[len(g.Log)-1].Type)
}

func TestDrawFatigue(t *testing.T) {
	g := New("g", 1, 0)
	p := g.Player(SideSelf)
	p.Deck = []*CardInstance{g.NewInstance(minionDef(1, 1, 1))}

	drawn := g.Draw(SideSelf, 3)
	assert.Len(t, drawn, 1)
	assert.Equal(t, 2, p.Fatigue)
	assert.Equal(t, 30-1-2, p.Hero.Health)
}

func TestMillDiscardShuffle(t *testing.T) {
	g := New("g", 7, 0)
	p := g.Player(SideOpponent)
	for i := range 3 {
		p.Deck = append(p.Deck, g.NewInstance(minionDef(i+1, 1, 1)))
		p.Hand = append(p.Hand, g.NewInstance(minionDef(i+10, 1, 1)))
	}
	assert.Equal(t, 2, g.Mill(SideOpponent, 2))
	assert.Len(t, p.Deck, 1)
	assert.Equal(t, 3, g.Mill(SideOpponent, 5)+2)

	assert.Equal(t, 3, g.Discard(SideOpponent, 4))
	assert.Empty(t, p.Hand)

	g.ShuffleIntoDeck(SideOpponent, g.NewInstance(minionDef(20, 1, 1)))
	assert.Len(t, p.Deck, 1)
}

func TestCollectDeadOrderAndGraveyard(t *testing.T) {
	g := New("g", 1, 0)
	self, opp := g.Player(SideSelf), g.Player(SideOpponent)
	a := g.NewInstance(minionDef(1, 1, 1))
	b := g.NewInstance(minionDef(2, 1, 1))
	c := g.NewInstance(minionDef(3, 1, 1))
	d := g.NewInstance(minionDef(4, 1, 1))
	self.Battlefield = []*CardInstance{a, b, c}
	opp.Battlefield = []*CardInstance{d}
	b.Health = 0
	c.Destroyed = true
	d.Health = -3

	deaths := g.CollectDead(SideOpponent)
	require.Len(t, deaths, 3)
	assert.Equal(t, d.InstanceID, deaths[0].Minion.InstanceID, "acting side first")
	assert.Equal(t, b.InstanceID, deaths[1].Minion.InstanceID)
	assert.Equal(t, 1, deaths[1].Slot)
	assert.Equal(t, 1, deaths[2].Slot)
	assert.Equal(t, []*CardInstance{a}, self.Battlefield)
	assert.Len(t, self.Graveyard, 2)
	assert.Len(t, opp.Graveyard, 1)

	assert.Empty(t, g.CollectDead(SideSelf))
	assert.Len(t, self.Graveyard, 2)
}

func TestCollectDeadReconcilesColossal(t *testing.T) {
	g := New("g", 1, 0)
	p := g.Player(SideSelf)
	main := g.NewInstance(minionDef(1, 5, 5))
	left := g.NewInstance(minionDef(2, 1, 1))
	right := g.NewInstance(minionDef(2, 1, 1))
	main.ColossalParts = []string{left.InstanceID, right.InstanceID}
	left.ColossalParent = main.InstanceID
	right.ColossalParent = main.InstanceID
	p.Battlefield = []*CardInstance{left, main, right}

	left.Health = 0
	g.CollectDead(SideSelf)
	assert.Equal(t, []string{right.InstanceID}, main.ColossalParts)

	main.Health = 0
	g.CollectDead(SideSelf)
	assert.Empty(t, right.ColossalParent)
}

func TestCheckHeroes(t *testing.T) {
	g := New("g", 1, 0)
	assert.False(t, g.CheckHeroes())
	g.Player(SideOpponent).Hero.Health = 0
	assert.True(t, g.CheckHeroes())
	require.NotNil(t, g.Winner)
	assert.Equal(t, SideSelf, *g.Winner)

	g = New("g", 1, 0)
	g.Player(SideOpponent).Hero.Health = 0
	g.Player(SideSelf).Hero.Health = -1
	assert.True(t, g.CheckHeroes())
	assert.Nil(t, g.Winner)
}

func TestCloneIsIndependent(t *testing.T) {
	g := New("g", 42, 0)
	m := g.NewInstance(minionDef(1, 2, 2))
	g.Player(SideSelf).Battlefield = append(g.Player(SideSelf).Battlefield, m)
	g.Player(SideSelf).Counters.Increment("jade_golem", 2)

	cp := g.Clone()
	cp.Player(SideSelf).Battlefield[0].Health = 0
	cp.Player(SideSelf).Counters.Increment("jade_golem", 1)
	cp.Player(SideSelf).Hero.Health = 1

	assert.Equal(t, 2, m.Health)
	assert.Equal(t, 2, g.Player(SideSelf).Counters.Get("jade_golem"))
	assert.Equal(t, 30, g.Player(SideSelf).Hero.Health)
	assert.Equal(t, g.Rand().Uint64(), cp.Rand().Uint64(), "clones continue the same random stream")
}

func TestChecksumDeterministic(t *testing.T) {
	build := func() *GameState {
		g := New("same", 9, 0)
		g.Player(SideSelf).Battlefield = append(g.Player(SideSelf).Battlefield, g.NewInstance(minionDef(1, 2, 2)))
		g.Record(rules.EventDamageDealt, "x", "y", SideSelf, 2, "")
		return g
	}
	a, b := build(), build()
	assert.Equal(t, a.Checksum(), b.Checksum())

	b.Player(SideSelf).Hero.Armor = 1
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}

func TestDeterministicInstanceIDs(t *testing.T) {
	a, b := New("same", 1, 0), New("same", 2, 0)
	assert.Equal(t, a.NewInstanceID(), b.NewInstanceID())
	c := New("other", 1, 0)
	assert.NotEqual(t, New("same", 1, 0).NewInstanceID(), c.NewInstanceID())
}

func TestLocate(t *testing.T) {
	g := New("g", 1, 0)
	m := g.NewInstance(minionDef(1, 1, 1))
	g.Player(SideOpponent).Battlefield = []*CardInstance{m}
	h := g.NewInstance(minionDef(2, 1, 1))
	g.Player(SideSelf).Hand = []*CardInstance{h}

	loc, ok := g.Locate(m.InstanceID)
	require.True(t, ok)
	assert.Equal(t, SideOpponent, loc.Side)
	assert.Same(t, m, loc.Minion)

	loc, ok = g.Locate(g.Player(SideSelf).Hero.ID)
	require.True(t, ok)
	assert.True(t, loc.IsHero())

	_, ok = g.Locate(h.InstanceID)
	assert.False(t, ok)
	loc, ok = g.LocateAnywhere(h.InstanceID)
	require.True(t, ok)
	assert.Equal(t, ZoneHand, loc.Zone)
}

func TestEnchantmentExpiry(t *testing.T) {
	g := New("g", 1, 0)
	m := g.NewInstance(minionDef(1, 1, 1))
	g.Enchant(m, "src", 2, 0, nil, catalog.DurationThisTurn)
	g.Enchant(m, "src", 1, 1, []catalog.Keyword{catalog.KeywordTaunt}, catalog.DurationPermanent)
	assert.Equal(t, 4, m.Attack)
	assert.True(t, m.Taunt)

	m.ExpireTurnEnchantments()
	assert.Equal(t, 2, m.Attack)
	assert.Equal(t, 2, m.Health)
	assert.Len(t, m.Enchantments, 1)

	m.Health = 1
	m.ResetToPrinted()
	assert.Equal(t, 1, m.Attack)
	assert.Equal(t, 1, m.MaxHealth)
	assert.Equal(t, 1, m.Health)
}

func TestExpiryKeepsKeywordsGrantedElsewhere(t *testing.T) {
	taunt := []catalog.Keyword{catalog.KeywordTaunt}

	t.Run("permanent enchantment", func(t *testing.T) {
		g := New("g", 1, 0)
		m := g.NewInstance(minionDef(1, 1, 1))
		g.Enchant(m, "a", 0, 0, taunt, catalog.DurationPermanent)
		g.Enchant(m, "b", 0, 0, taunt, catalog.DurationThisTurn)

		m.ExpireTurnEnchantments()
		assert.True(t, m.Taunt)
		assert.Len(t, m.Enchantments, 1)
	})
	t.Run("magnetic attachment", func(t *testing.T) {
		g := New("g", 1, 0)
		m := g.NewInstance(minionDef(1, 1, 1))
		m.Attachments = append(m.Attachments, Attachment{InstanceID: "magnet", Keywords: taunt})
		m.Taunt = true
		g.Enchant(m, "b", 0, 0, taunt, catalog.DurationThisTurn)

		m.ExpireTurnEnchantments()
		assert.True(t, m.Taunt)
	})
	t.Run("printed keyword", func(t *testing.T) {
		g := New("g", 1, 0)
		def := minionDef(1, 1, 1)
		def.Keywords = taunt
		m := g.NewInstance(def)
		m.Taunt = true
		g.Enchant(m, "b", 0, 0, taunt, catalog.DurationThisTurn)

		m.ExpireTurnEnchantments()
		assert.True(t, m.Taunt)
	})
	t.Run("only source", func(t *testing.T) {
		g := New("g", 1, 0)
		m := g.NewInstance(minionDef(1, 1, 1))
		g.Enchant(m, "b", 0, 0, []catalog.Keyword{catalog.KeywordTaunt, catalog.KeywordLifesteal}, catalog.DurationThisTurn)

		m.ExpireTurnEnchantments()
		assert.False(t, m.Taunt)
		assert.False(t, m.Lifesteal)
		assert.Empty(t, m.Enchantments)
	})
}

func TestRuleErrorMatching(t *testing.T) {
	err := NewError(KindNoValidTargets, "damage", "no enemy minions")
	assert.ErrorIs(t, err, ErrNoValidTargets)
	assert.False(t, errors.Is(err, ErrZoneFull))
	assert.Equal(t, "damage: NoValidTargets: no enemy minions", err.Error())

	wrapped := fmt.Errorf("play card: %w", err)
	assert.Equal(t, KindNoValidTargets, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("opponent")
	require.NoError(t, err)
	assert.Equal(t, SideOpponent, s)
	assert.Equal(t, SideSelf, s.Opposite())
	_, err = ParseSide("both")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
