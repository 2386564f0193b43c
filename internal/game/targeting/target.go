package targeting

import (
	"strings"

	"github.com/norsecards/ragnarok-engine/internal/game/state"
)

// TargetType is a target-type tag from an effect descriptor.
type TargetType string

const (
	None TargetType = "none"
	Self TargetType = "self"

	FriendlyHero TargetType = "friendly_hero"
	EnemyHero    TargetType = "enemy_hero"

	FriendlyMinion      TargetType = "friendly_minion"
	OtherFriendlyMinion TargetType = "other_friendly_minion"
	EnemyMinion         TargetType = "enemy_minion"
	AnyMinion           TargetType = "any_minion"
	FriendlyCharacter   TargetType = "friendly_character"
	EnemyCharacter      TargetType = "enemy_character"
	AnyCharacter        TargetType = "any_character"

	AllFriendlyMinions    TargetType = "all_friendly_minions"
	OtherFriendlyMinions  TargetType = "other_friendly_minions"
	AllEnemyMinions       TargetType = "all_enemy_minions"
	AllMinions            TargetType = "all_minions"
	AllOtherMinions       TargetType = "all_other_minions"
	AllFriendlyCharacters TargetType = "all_friendly_characters"
	AllEnemyCharacters    TargetType = "all_enemy_characters"
	AllCharacters         TargetType = "all_characters"
	Adjacent              TargetType = "adjacent"

	RandomEnemyMinion    TargetType = "random_enemy_minion"
	RandomFriendlyMinion TargetType = "random_friendly_minion"
	RandomEnemyCharacter TargetType = "random_enemy_character"
)

// Mode says how a handler turns the legal set into affected targets.
type Mode int

const (
	// ModeNone means no targeting is involved.
	ModeNone Mode = iota
	// ModeChosen means exactly one pre-chosen target from the set.
	ModeChosen
	// ModeAll means every target in the set.
	ModeAll
	// ModeRandom means the handler picks at random from the set.
	ModeRandom
)

func (m Mode) String() string {
	switch m {
	case ModeChosen:
		return "chosen"
	case ModeAll:
		return "all"
	case ModeRandom:
		return "random"
	}
	return "none"
}

// ModeOf returns the mode implied by a tag.
func ModeOf(t TargetType) Mode {
	switch t {
	case "", None:
		return ModeNone
	case FriendlyMinion, OtherFriendlyMinion, EnemyMinion, AnyMinion, FriendlyCharacter, EnemyCharacter, AnyCharacter:
		return ModeChosen
	}
	if strings.HasPrefix(string(t), "random_") {
		return ModeRandom
	}
	return ModeAll
}

// Target is one legal target.
type Target struct {
	ID   string
	Side state.Side
	Hero bool
}

// Selection is the ordered, deduplicated output of the resolver.
type Selection struct {
	Type    TargetType
	Mode    Mode
	Targets []Target
}

// Empty reports whether the selection has no targets.
func (s Selection) Empty() bool {
	return len(s.Targets) == 0
}

// IDs returns the target ids in order.
func (s Selection) IDs() []string {
	out := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		out[i] = t.ID
	}
	return out
}

// Contains reports whether id is in the selection.
func (s Selection) Contains(id string) bool {
	for _, t := range s.Targets {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Minions returns only the minion targets, in order.
func (s Selection) Minions() []Target {
	var out []Target
	for _, t := range s.Targets {
		if !t.Hero {
			out = append(out, t)
		}
	}
	return out
}
