package game

import (
	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game/combat"
	"github.com/norsecards/ragnarok-engine/internal/game/counters"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// GameView is a game as one side may see it. The opponent's hand and both
// decks are reduced to counts.
type GameView struct {
	GameID   string       `json:"game_id"`
	Turn     int          `json:"turn"`
	Phase    string       `json:"phase"`
	Active   string       `json:"active"`
	Viewer   string       `json:"viewer"`
	Over     bool         `json:"over"`
	Winner   string       `json:"winner,omitempty"`
	Players  []PlayerView `json:"players"`
	Choice   *ChoiceView  `json:"choice,omitempty"`
	Pending  []CombatView `json:"pending_attacks,omitempty"`
	Checksum string       `json:"checksum"`
	Events   int          `json:"events"`
}

// PlayerView is one side of a GameView.
type PlayerView struct {
	Side        string                 `json:"side"`
	HeroID      string                 `json:"hero_id"`
	Health      int                    `json:"health"`
	MaxHealth   int                    `json:"max_health"`
	Armor       int                    `json:"armor"`
	HeroAttack  int                    `json:"hero_attack"`
	HeroFrozen  bool                   `json:"hero_frozen,omitempty"`
	Mana        ManaView               `json:"mana"`
	Weapon      *WeaponView            `json:"weapon,omitempty"`
	HandCount   int                    `json:"hand_count"`
	Hand        []CardView             `json:"hand,omitempty"`
	DeckCount   int                    `json:"deck_count"`
	Battlefield []CardView             `json:"battlefield"`
	Graveyard   []CardView             `json:"graveyard,omitempty"`
	Quest       *QuestView             `json:"quest,omitempty"`
	Counters    []counters.CounterView `json:"counters,omitempty"`
	Fatigue     int                    `json:"fatigue"`
	ExtraTurns  int                    `json:"extra_turns,omitempty"`
	Discount    *DiscountView          `json:"discount,omitempty"`
}

// DiscountView is a pending cost reduction.
type DiscountView struct {
	Amount int    `json:"amount"`
	Race   string `json:"race,omitempty"`
}

// ManaView is a player's mana.
type ManaView struct {
	Current         int `json:"current"`
	Max             int `json:"max"`
	Temporary       int `json:"temporary,omitempty"`
	Overloaded      int `json:"overloaded,omitempty"`
	PendingOverload int `json:"pending_overload,omitempty"`
}

// WeaponView is an equipped weapon.
type WeaponView struct {
	ID         string `json:"id"`
	CardID     int    `json:"card_id"`
	Name       string `json:"name"`
	Attack     int    `json:"attack"`
	Durability int    `json:"durability"`
}

// CardView is a card in hand, on the board or in the graveyard.
type CardView struct {
	ID           string            `json:"id"`
	CardID       int               `json:"card_id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Race         string            `json:"race,omitempty"`
	Cost         int               `json:"cost"`
	Attack       int               `json:"attack,omitempty"`
	Health       int               `json:"health,omitempty"`
	MaxHealth    int               `json:"max_health,omitempty"`
	Keywords     []catalog.Keyword `json:"keywords,omitempty"`
	Sick         bool              `json:"summoning_sick,omitempty"`
	Frozen       bool              `json:"frozen,omitempty"`
	Silenced     bool              `json:"silenced,omitempty"`
	Enchantments int               `json:"enchantments,omitempty"`
	Attachments  int               `json:"attachments,omitempty"`
}

// QuestView is an active quest.
type QuestView struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Goal     int    `json:"goal"`
}

// ChoiceView is a pending discover or adapt choice. Options are shown only
// to the choosing side.
type ChoiceView struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Side    string   `json:"side"`
	Options []string `json:"options,omitempty"`
}

// CombatView is a queued attack.
type CombatView struct {
	StepID   string `json:"step_id"`
	Attacker string `json:"attacker"`
	Defender string `json:"defender"`
	Damage   int    `json:"damage"`
}

// View renders a game for viewer.
func (e *Engine) View(gameID string, viewer state.Side) (GameView, error) {
	if !viewer.Valid() {
		return GameView{}, state.NewError(state.KindInvalidAction, "view", "unknown side %d", int(viewer))
	}
	entry, err := e.game(gameID)
	if err != nil {
		return GameView{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	g := entry.state

	v := GameView{
		GameID:   g.ID,
		Turn:     g.TurnNumber(),
		Phase:    g.Turn.CurrentPhase().String(),
		Active:   g.Current().String(),
		Viewer:   viewer.String(),
		Over:     g.Over,
		Checksum: g.Checksum(),
		Events:   len(g.Log),
	}
	if g.Winner != nil {
		v.Winner = g.Winner.String()
	}
	for _, side := range state.Sides {
		v.Players = append(v.Players, playerView(g.Player(side), side == viewer))
	}
	if c := g.PendingChoice; c != nil {
		v.Choice = choiceView(c, c.Side == viewer)
	}
	for _, step := range entry.pipeline.Pending() {
		v.Pending = append(v.Pending, combatView(step))
	}
	return v, nil
}

func playerView(p *state.PlayerState, owner bool) PlayerView {
	v := PlayerView{
		Side:       p.Side.String(),
		HeroID:     p.Hero.ID,
		Health:     p.Hero.Health,
		MaxHealth:  p.Hero.MaxHealth,
		Armor:      p.Hero.Armor,
		HeroAttack: p.HeroAttack(),
		HeroFrozen: p.Hero.Frozen,
		Mana: ManaView{
			Current:         p.Mana.Current,
			Max:             p.Mana.Max,
			Temporary:       p.Mana.Temporary,
			Overloaded:      p.Mana.Overloaded,
			PendingOverload: p.Mana.PendingOverload,
		},
		HandCount:   len(p.Hand),
		DeckCount:   len(p.Deck),
		Battlefield: cardViews(p.Battlefield),
		Graveyard:   cardViews(p.Graveyard),
		Counters:    p.Counters.ToView(),
		Fatigue:     p.Fatigue,
		ExtraTurns:  p.ExtraTurns,
	}
	if d := p.Discount; d != nil {
		v.Discount = &DiscountView{Amount: d.Amount, Race: string(d.Race)}
	}
	if owner {
		v.Hand = cardViews(p.Hand)
	}
	if w := p.Weapon; w != nil {
		v.Weapon = &WeaponView{ID: w.InstanceID, CardID: w.Card.ID, Name: w.Card.Name, Attack: w.Attack, Durability: w.Durability}
	}
	if q := p.Quest; q != nil {
		v.Quest = &QuestView{Name: q.Name, Progress: q.Progress, Goal: q.Goal}
	}
	return v
}

func cardViews(zone []*state.CardInstance) []CardView {
	out := make([]CardView, 0, len(zone))
	for _, ci := range zone {
		out = append(out, CardView{
			ID:           ci.InstanceID,
			CardID:       ci.Card.ID,
			Name:         ci.Name(),
			Type:         string(ci.Card.Type),
			Race:         string(ci.Card.Race),
			Cost:         ci.Cost,
			Attack:       ci.Attack,
			Health:       ci.Health,
			MaxHealth:    ci.MaxHealth,
			Keywords:     ci.ActiveKeywords(),
			Sick:         ci.SummoningSick,
			Frozen:       ci.Frozen,
			Silenced:     ci.Silenced,
			Enchantments: len(ci.Enchantments),
			Attachments:  len(ci.Attachments),
		})
	}
	return out
}

func choiceView(c *state.Choice, owner bool) *ChoiceView {
	v := &ChoiceView{ID: c.ID, Kind: string(c.Kind), Side: c.Side.String()}
	if !owner {
		return v
	}
	if c.Kind == state.ChoiceAdapt {
		v.Options = append(v.Options, c.Adaptations...)
		return v
	}
	for _, def := range c.Options {
		v.Options = append(v.Options, def.Name)
	}
	return v
}

func combatView(step combat.CombatStep) CombatView {
	return CombatView{
		StepID:   step.ID,
		Attacker: step.Attacker.Name,
		Defender: step.Defender.Name,
		Damage:   step.Damage,
	}
}
