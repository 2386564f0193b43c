package catalog

import "slices"

// CardType is the broad kind of a card.
type CardType string

const (
	TypeMinion   CardType = "minion"
	TypeSpell    CardType = "spell"
	TypeWeapon   CardType = "weapon"
	TypeHero     CardType = "hero"
	TypeSecret   CardType = "secret"
	TypeLocation CardType = "location"
)

// Class is the hero class a card belongs to.
type Class string

const (
	ClassNeutral     Class = "neutral"
	ClassWarrior     Class = "warrior"
	ClassMage        Class = "mage"
	ClassHunter      Class = "hunter"
	ClassPaladin     Class = "paladin"
	ClassPriest      Class = "priest"
	ClassRogue       Class = "rogue"
	ClassShaman      Class = "shaman"
	ClassWarlock     Class = "warlock"
	ClassDruid       Class = "druid"
	ClassDeathKnight Class = "deathknight"
	ClassDemonHunter Class = "demonhunter"
)

// Rarity of a card.
type Rarity string

const (
	RarityFree      Rarity = "free"
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Race is the minion sub-type ("tribe"). RaceAll counts as every race.
type Race string

const (
	RaceNone      Race = ""
	RaceBeast     Race = "beast"
	RaceDragon    Race = "dragon"
	RaceElemental Race = "elemental"
	RaceMech      Race = "mech"
	RaceMurloc    Race = "murloc"
	RaceDemon     Race = "demon"
	RacePirate    Race = "pirate"
	RaceTotem     Race = "totem"
	RaceUndead    Race = "undead"
	RaceNaga      Race = "naga"
	RaceAll       Race = "all"
)

// Is reports whether the race satisfies the wanted race.
func (r Race) Is(want Race) bool {
	if want == RaceNone {
		return true
	}
	return r == want || r == RaceAll
}

// Keyword is a static ability printed on a card.
type Keyword string

const (
	KeywordTaunt        Keyword = "taunt"
	KeywordCharge       Keyword = "charge"
	KeywordRush         Keyword = "rush"
	KeywordDivineShield Keyword = "divine_shield"
	KeywordStealth      Keyword = "stealth"
	KeywordWindfury     Keyword = "windfury"
	KeywordMegaWindfury Keyword = "mega_windfury"
	KeywordLifesteal    Keyword = "lifesteal"
	KeywordPoisonous    Keyword = "poisonous"
	KeywordFrenzy       Keyword = "frenzy"
	KeywordMagnetic     Keyword = "magnetic"
	KeywordColossal     Keyword = "colossal"
	KeywordImmune       Keyword = "immune"
	KeywordEnrage       Keyword = "enrage"
	KeywordElusive      Keyword = "elusive"
	KeywordDeathrattle  Keyword = "deathrattle"
	KeywordBattlecry    Keyword = "battlecry"
)

// StatLine is an attack/health pair.
type StatLine struct {
	Attack int `json:"attack" yaml:"attack" toml:"attack"`
	Health int `json:"health" yaml:"health" toml:"health"`
}

// Definition is the static, read-only record of a card.
type Definition struct {
	ID          int       `json:"id" yaml:"id" toml:"id"`
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Type        CardType  `json:"type" yaml:"type" toml:"type"`
	Class       Class     `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	Rarity      Rarity    `json:"rarity,omitempty" yaml:"rarity,omitempty" toml:"rarity,omitempty"`
	Race        Race      `json:"race,omitempty" yaml:"race,omitempty" toml:"race,omitempty"`
	Cost        int       `json:"cost" yaml:"cost" toml:"cost"`
	Attack      int       `json:"attack,omitempty" yaml:"attack,omitempty" toml:"attack,omitempty"`
	Health      int       `json:"health,omitempty" yaml:"health,omitempty" toml:"health,omitempty"`
	Durability  int       `json:"durability,omitempty" yaml:"durability,omitempty" toml:"durability,omitempty"`
	Keywords    []Keyword `json:"keywords,omitempty" yaml:"keywords,omitempty" toml:"keywords,omitempty"`
	Token       bool      `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Overload    int       `json:"overload,omitempty" yaml:"overload,omitempty" toml:"overload,omitempty"`
	SpellDamage int       `json:"spell_damage,omitempty" yaml:"spell_damage,omitempty" toml:"spell_damage,omitempty"`

	// EnrageAttack is the attack bonus held while an enrage minion is damaged.
	EnrageAttack int `json:"enrage_attack,omitempty" yaml:"enrage_attack,omitempty" toml:"enrage_attack,omitempty"`

	// ColossalParts lists, in summon order, the part card ids of a colossal minion.
	ColossalParts []int `json:"colossal_parts,omitempty" yaml:"colossal_parts,omitempty" toml:"colossal_parts,omitempty"`

	Battlecry   *Effect `json:"battlecry,omitempty" yaml:"battlecry,omitempty" toml:"battlecry,omitempty"`
	Deathrattle *Effect `json:"deathrattle,omitempty" yaml:"deathrattle,omitempty" toml:"deathrattle,omitempty"`
	Spell       *Effect `json:"spell,omitempty" yaml:"spell,omitempty" toml:"spell,omitempty"`
	Combo       *Effect `json:"combo,omitempty" yaml:"combo,omitempty" toml:"combo,omitempty"`
	Frenzy      *Effect `json:"frenzy,omitempty" yaml:"frenzy,omitempty" toml:"frenzy,omitempty"`
	AfterAttack *Effect `json:"after_attack,omitempty" yaml:"after_attack,omitempty" toml:"after_attack,omitempty"`
	EndOfTurn   *Effect `json:"end_of_turn,omitempty" yaml:"end_of_turn,omitempty" toml:"end_of_turn,omitempty"`
}

// HasKeyword reports whether the definition prints the keyword.
func (d *Definition) HasKeyword(k Keyword) bool {
	return slices.Contains(d.Keywords, k)
}

// IsMinion reports whether the card is a minion.
func (d *Definition) IsMinion() bool {
	return d.Type == TypeMinion
}

// Collectible reports whether the card may appear in random pools.
func (d *Definition) Collectible() bool {
	return !d.Token
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	out := d
	out.Keywords = slices.Clone(d.Keywords)
	out.ColossalParts = slices.Clone(d.ColossalParts)
	out.Battlecry = d.Battlecry.Clone()
	out.Deathrattle = d.Deathrattle.Clone()
	out.Spell = d.Spell.Clone()
	out.Combo = d.Combo.Clone()
	out.Frenzy = d.Frenzy.Clone()
	out.AfterAttack = d.AfterAttack.Clone()
	out.EndOfTurn = d.EndOfTurn.Clone()
	return out
}
