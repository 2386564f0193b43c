package targeting

import (
	"testing"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type board struct {
	g        *state.GameState
	friendly []*state.CardInstance
	enemy    []*state.CardInstance
}

func newBoard(t *testing.T) board {
	t.Helper()
	g := state.New("targeting", 1, 0)
	def := catalog.Definition{ID: 1, Name: "m", Type: catalog.TypeMinion, Attack: 1, Health: 2}
	b := board{g: g}
	for range 3 {
		m := g.NewInstance(def)
		g.Player(state.SideSelf).Battlefield = append(g.Player(state.SideSelf).Battlefield, m)
		b.friendly = append(b.friendly, m)
	}
	for range 2 {
		m := g.NewInstance(def)
		g.Player(state.SideOpponent).Battlefield = append(g.Player(state.SideOpponent).Battlefield, m)
		b.enemy = append(b.enemy, m)
	}
	return b
}

func TestResolveNoneIsNotAnError(t *testing.T) {
	b := newBoard(t)
	for _, tag := range []TargetType{"", None} {
		sel, err := Resolve(b.g, Source{Side: state.SideSelf}, tag)
		require.NoError(t, err)
		assert.Equal(t, ModeNone, sel.Mode)
		assert.True(t, sel.Empty())
	}
}

func TestResolveOrdering(t *testing.T) {
	b := newBoard(t)
	sel, err := Resolve(b.g, Source{Side: state.SideOpponent, InstanceID: b.enemy[0].InstanceID}, AllCharacters)
	require.NoError(t, err)
	assert.Equal(t, ModeAll, sel.Mode)
	want := []string{
		b.enemy[0].InstanceID, b.enemy[1].InstanceID,
		b.friendly[0].InstanceID, b.friendly[1].InstanceID, b.friendly[2].InstanceID,
		b.g.Player(state.SideOpponent).Hero.ID, b.g.Player(state.SideSelf).Hero.ID,
	}
	assert.Equal(t, want, sel.IDs())
}

func TestResolveTags(t *testing.T) {
	b := newBoard(t)
	src := Source{Side: state.SideSelf, InstanceID: b.friendly[1].InstanceID}

	tests := []struct {
		tag  TargetType
		mode Mode
		n    int
	}{
		{FriendlyMinion, ModeChosen, 3},
		{OtherFriendlyMinion, ModeChosen, 2},
		{EnemyMinion, ModeChosen, 2},
		{AnyMinion, ModeChosen, 5},
		{EnemyCharacter, ModeChosen, 3},
		{AnyCharacter, ModeChosen, 7},
		{AllFriendlyMinions, ModeAll, 3},
		{AllOtherMinions, ModeAll, 4},
		{AllEnemyCharacters, ModeAll, 3},
		{FriendlyHero, ModeAll, 1},
		{EnemyHero, ModeAll, 1},
		{Self, ModeAll, 1},
		{Adjacent, ModeAll, 2},
		{RandomEnemyMinion, ModeRandom, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			sel, err := Resolve(b.g, src, tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, sel.Mode)
			assert.Len(t, sel.Targets, tt.n)
		})
	}
}

func TestResolveUnknownTag(t *testing.T) {
	b := newBoard(t)
	_, err := Resolve(b.g, Source{Side: state.SideSelf}, "everything_everywhere")
	assert.ErrorIs(t, err, state.ErrMissingRequiredParameter)
}

func TestStealthElusiveImmune(t *testing.T) {
	b := newBoard(t)
	b.enemy[0].Stealth = true
	b.enemy[1].Elusive = true
	b.friendly[0].Immune = true

	sel, err := Resolve(b.g, Source{Side: state.SideSelf}, EnemyMinion)
	require.NoError(t, err)
	assert.Equal(t, []string{b.enemy[1].InstanceID}, sel.IDs())

	sel, err = Resolve(b.g, Source{Side: state.SideSelf, Spell: true}, EnemyMinion)
	require.NoError(t, err)
	assert.True(t, sel.Empty())

	sel, err = Resolve(b.g, Source{Side: state.SideSelf}, FriendlyMinion)
	require.NoError(t, err)
	assert.False(t, sel.Contains(b.friendly[0].InstanceID))

	sel, err = Resolve(b.g, Source{Side: state.SideSelf, Spell: true}, AllEnemyMinions)
	require.NoError(t, err)
	assert.Len(t, sel.Targets, 2, "area effects still hit hidden minions")
}

func TestChoose(t *testing.T) {
	b := newBoard(t)
	sel, err := Resolve(b.g, Source{Side: state.SideSelf}, EnemyMinion)
	require.NoError(t, err)

	target, err := Choose(sel, b.enemy[1].InstanceID)
	require.NoError(t, err)
	assert.Equal(t, state.SideOpponent, target.Side)

	_, err = Choose(sel, b.friendly[0].InstanceID)
	assert.ErrorIs(t, err, state.ErrNoValidTargets)
	_, err = Choose(sel, "")
	assert.ErrorIs(t, err, state.ErrMissingRequiredParameter)
	_, err = Choose(Selection{Type: EnemyMinion}, "x")
	assert.ErrorIs(t, err, state.ErrNoValidTargets)
}

func TestResolveDoesNotShareOrdering(t *testing.T) {
	b := newBoard(t)
	src := Source{Side: state.SideSelf}
	first, _ := Resolve(b.g, src, AllMinions)
	first.Targets[0], first.Targets[1] = first.Targets[1], first.Targets[0]
	second, _ := Resolve(b.g, src, AllMinions)
	assert.Equal(t, b.friendly[0].InstanceID, second.Targets[0].ID)
}
