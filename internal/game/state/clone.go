package state

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"golang.org/x/crypto/blake2b"
)

// Clone returns a deep copy for read-only use. Mutating the copy never
// affects the original, including its random stream.
func (g *GameState) Clone() *GameState {
	out := *g
	for i, p := range g.Players {
		out.Players[i] = p.Clone()
	}
	if g.Winner != nil {
		w := *g.Winner
		out.Winner = &w
	}
	out.Log = slices.Clone(g.Log)
	for i := range out.Log {
		if md := g.Log[i].Metadata; md != nil {
			cp := make(map[string]string, len(md))
			for k, v := range md {
				cp[k] = v
			}
			out.Log[i].Metadata = cp
		}
		out.Log[i].Targets = slices.Clone(g.Log[i].Targets)
	}
	if g.PendingChoice != nil {
		c := *g.PendingChoice
		c.Options = make([]catalog.Definition, len(g.PendingChoice.Options))
		for i, def := range g.PendingChoice.Options {
			c.Options[i] = def.Clone()
		}
		c.Adaptations = slices.Clone(g.PendingChoice.Adaptations)
		out.PendingChoice = &c
	}
	return &out
}

// Checksum hashes a deterministic rendering of the state with blake2b-256.
// Wall clock timestamps are excluded, so two games driven by the same seed
// and actions produce the same checksum.
func (g *GameState) Checksum() string {
	sum := blake2b.Sum256([]byte(g.canonical()))
	return hex.EncodeToString(sum[:])
}

func (g *GameState) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%s|%t|%s\n",
		g.ID, g.Turn.TurnNumber(), g.Turn.CurrentPhase(), g.Turn.Active(), g.Over, winnerString(g.Winner))
	for _, p := range g.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%d/%d|%d|%d|%d/%d+%d|%d|%d|%d\n",
			p.Side, p.Hero.Health, p.Hero.MaxHealth, p.Hero.Armor, p.Hero.Attack,
			p.Mana.Current, p.Mana.Max, p.Mana.Temporary, p.Mana.PendingOverload, p.Fatigue, p.ExtraTurns)
		if p.Discount != nil {
			fmt.Fprintf(&buf, "DISCOUNT:%d|%s\n", p.Discount.Amount, p.Discount.Race)
		}
		if p.Weapon != nil {
			fmt.Fprintf(&buf, "WEAPON:%s|%d|%d|%d\n", p.Weapon.InstanceID, p.Weapon.Card.ID, p.Weapon.Attack, p.Weapon.Durability)
		}
		if p.Quest != nil {
			fmt.Fprintf(&buf, "QUEST:%d|%s|%d/%d\n", p.Quest.SourceCardID, p.Quest.Kind, p.Quest.Progress, p.Quest.Goal)
		}
		for _, c := range p.Counters.ToView() {
			fmt.Fprintf(&buf, "COUNTER:%s=%d\n", c.Name, c.Count)
		}
		writeZone(&buf, "HAND", p.Hand)
		writeZone(&buf, "DECK", p.Deck)
		writeZone(&buf, "BOARD", p.Battlefield)
		writeZone(&buf, "GRAVE", p.Graveyard)
	}
	if c := g.PendingChoice; c != nil {
		fmt.Fprintf(&buf, "CHOICE:%s|%s|%s|%d\n", c.Kind, c.Side, c.SourceID, c.OptionCount())
	}
	for _, evt := range g.Log {
		fmt.Fprintf(&buf, "EVENT:%d|%s|%s|%s|%s|%d|%d\n",
			evt.Seq, evt.Type, evt.TargetID, evt.SourceID, evt.Controller, evt.CardID, evt.Amount)
	}
	return buf.String()
}

func writeZone(buf *bytes.Buffer, name string, zone []*CardInstance) {
	for _, ci := range zone {
		fmt.Fprintf(buf, "%s:%s|%d|%d/%d/%d|%v|%t\n",
			name, ci.InstanceID, ci.Card.ID, ci.Attack, ci.Health, ci.MaxHealth, ci.ActiveKeywords(), ci.Silenced)
	}
}

func winnerString(w *Side) string {
	if w == nil {
		return "-"
	}
	return w.String()
}
