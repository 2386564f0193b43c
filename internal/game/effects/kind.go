package effects

// Kind names an effect handler. The set is closed; descriptors carrying any
// other tag fall through to the script path.
type Kind string

const (
	KindDamage            Kind = "damage"
	KindAoeDamage         Kind = "aoe_damage"
	KindSplashDamage      Kind = "splash_damage"
	KindSplitDamage       Kind = "split_damage"
	KindRandomDamage      Kind = "random_damage"
	KindConditionalDamage Kind = "conditional_damage"
	KindDestroy           Kind = "destroy"
	KindDestroyAll        Kind = "destroy_all"
	KindDestroyRandom     Kind = "destroy_random"
	KindFreeze            Kind = "freeze"
	KindFreezeAll         Kind = "freeze_all"
	KindFreezeAndDamage   Kind = "freeze_and_damage"
	KindCleaveDamage      Kind = "cleave_damage"
	KindCleaveAndFreeze   Kind = "cleave_damage_with_freeze"
	KindDamageRandomEnemy Kind = "damage_random_enemy"
	KindDestroyTribe      Kind = "destroy_tribe"
	KindDestroyAllMinions Kind = "destroy_all_minions"

	KindBuff             Kind = "buff"
	KindBuffAdjacent     Kind = "buff_adjacent"
	KindBuffAndTaunt     Kind = "buff_and_taunt"
	KindBuffHero         Kind = "buff_hero"
	KindGiveKeyword      Kind = "give_keyword"
	KindDivineShieldGain Kind = "divine_shield_gain"
	KindGiveDivineShield Kind = "give_divine_shield"
	KindBuffTribe        Kind = "buff_tribe"
	KindDebuff           Kind = "debuff"
	KindDebuffAttack     Kind = "debuff_attack"
	KindDoubleHealth     Kind = "double_health"
	KindSilence          Kind = "silence"
	KindSetHealth        Kind = "set_health"
	KindSwapStats        Kind = "swap_stats"
	KindGainArmor        Kind = "gain_armor"
	KindHeal             Kind = "heal"

	KindSummon          Kind = "summon"
	KindSummonRandom    Kind = "summon_random"
	KindSummonFromDeck  Kind = "summon_from_deck"
	KindSummonJadeGolem Kind = "summon_jade_golem"
	KindFillBoard       Kind = "fill_board"
	KindResurrect       Kind = "resurrect"
	KindTransform       Kind = "transform"
	KindTransformRandom Kind = "transform_random"
	KindReturnToHand    Kind = "return_to_hand"
	KindMindControl     Kind = "mind_control"

	KindDraw            Kind = "draw"
	KindDrawByType      Kind = "draw_by_type"
	KindDrawBoth        Kind = "draw_both"
	KindMill            Kind = "mill"
	KindDiscard         Kind = "discard"
	KindDiscardRandom   Kind = "discard_random"
	KindAddCardToHand   Kind = "add_card_to_hand"
	KindAddRandomToHand Kind = "add_random_to_hand"
	KindCopyToHand      Kind = "copy_to_hand"
	KindCopyCardToHand  Kind = "copy_card_to_hand"
	KindShuffleIntoDeck Kind = "shuffle_into_deck"

	KindAlterMana   Kind = "alter_mana"
	KindGiveMana    Kind = "give_mana"
	KindSetMana     Kind = "set_mana"
	KindRefreshMana Kind = "refresh_mana"
	KindCostReduce  Kind = "cost_reduction"
	KindExtraTurn   Kind = "extra_turn"

	KindEquipWeapon   Kind = "equip_weapon"
	KindBuffWeapon    Kind = "buff_weapon"
	KindDestroyWeapon Kind = "destroy_weapon"

	KindDiscover            Kind = "discover"
	KindConditionalDiscover Kind = "conditional_discover"
	KindAdapt               Kind = "adapt"

	KindConditional Kind = "conditional"
	KindStartQuest  Kind = "start_quest"
)

// Family selects one of the three handler registries.
type Family int

const (
	FamilyBattlecry Family = iota
	FamilyDeathrattle
	FamilySpell
)

func (f Family) String() string {
	switch f {
	case FamilyBattlecry:
		return "battlecry"
	case FamilyDeathrattle:
		return "deathrattle"
	case FamilySpell:
		return "spell"
	}
	return "unknown"
}

// conditionalKinds consume Secondary as their payload instead of chaining it.
var conditionalKinds = map[Kind]bool{
	KindConditional:         true,
	KindConditionalDamage:   true,
	KindConditionalDiscover: true,
}

// BattlecryKinds is the closed set handled by the battlecry registry. Frenzy,
// after-attack and end-of-turn triggers resolve through it too.
var BattlecryKinds = []Kind{
	KindDamage, KindAoeDamage, KindRandomDamage, KindConditionalDamage,
	KindDestroy, KindDestroyRandom, KindFreeze, KindFreezeAll, KindDamageRandomEnemy,
	KindDestroyTribe,
	KindBuff, KindBuffAdjacent, KindBuffAndTaunt, KindBuffHero, KindGiveKeyword,
	KindDivineShieldGain, KindGiveDivineShield, KindBuffTribe, KindDebuff, KindDebuffAttack,
	KindSilence, KindSetHealth, KindSwapStats, KindGainArmor, KindHeal,
	KindSummon, KindSummonRandom, KindSummonJadeGolem, KindFillBoard, KindResurrect,
	KindTransform, KindReturnToHand, KindMindControl,
	KindDraw, KindDrawBoth, KindMill, KindDiscard, KindDiscardRandom, KindAddCardToHand,
	KindAddRandomToHand, KindCopyToHand, KindCopyCardToHand, KindShuffleIntoDeck,
	KindAlterMana, KindGiveMana, KindCostReduce,
	KindEquipWeapon, KindBuffWeapon, KindDestroyWeapon,
	KindDiscover, KindConditionalDiscover, KindAdapt,
	KindConditional,
}

// DeathrattleKinds is the closed set handled by the deathrattle registry.
var DeathrattleKinds = []Kind{
	KindDamage, KindAoeDamage, KindRandomDamage, KindDamageRandomEnemy, KindDestroyRandom,
	KindFreeze, KindFreezeAll,
	KindBuff, KindBuffTribe, KindGiveKeyword, KindGiveDivineShield, KindGainArmor, KindHeal,
	KindSummon, KindSummonRandom, KindSummonJadeGolem, KindFillBoard, KindResurrect,
	KindMindControl,
	KindDraw, KindDrawBoth, KindMill, KindDiscard, KindDiscardRandom, KindAddCardToHand,
	KindAddRandomToHand, KindShuffleIntoDeck,
	KindGiveMana,
	KindEquipWeapon, KindDestroyWeapon,
	KindConditional,
}

// SpellKinds is the closed set handled by the spell registry.
var SpellKinds = []Kind{
	KindDamage, KindAoeDamage, KindSplashDamage, KindSplitDamage, KindRandomDamage,
	KindDamageRandomEnemy, KindConditionalDamage, KindCleaveDamage, KindCleaveAndFreeze,
	KindDestroy, KindDestroyAll, KindDestroyAllMinions, KindDestroyRandom, KindDestroyTribe,
	KindFreeze, KindFreezeAll, KindFreezeAndDamage,
	KindBuff, KindBuffAdjacent, KindBuffAndTaunt, KindBuffHero, KindBuffTribe, KindGiveKeyword,
	KindDivineShieldGain, KindGiveDivineShield, KindDebuff, KindDebuffAttack, KindDoubleHealth,
	KindSilence, KindSetHealth, KindSwapStats, KindGainArmor, KindHeal,
	KindSummon, KindSummonRandom, KindSummonFromDeck, KindSummonJadeGolem, KindFillBoard,
	KindResurrect, KindTransform, KindTransformRandom, KindReturnToHand, KindMindControl,
	KindDraw, KindDrawByType, KindDrawBoth, KindMill, KindDiscard, KindDiscardRandom,
	KindAddCardToHand, KindAddRandomToHand, KindCopyToHand, KindCopyCardToHand, KindShuffleIntoDeck,
	KindAlterMana, KindGiveMana, KindSetMana, KindRefreshMana, KindCostReduce, KindExtraTurn,
	KindEquipWeapon, KindBuffWeapon, KindDestroyWeapon,
	KindDiscover, KindConditionalDiscover,
	KindConditional, KindStartQuest,
}

// Kinds returns the closed kind set of a family.
func (f Family) Kinds() []Kind {
	switch f {
	case FamilyBattlecry:
		return BattlecryKinds
	case FamilyDeathrattle:
		return DeathrattleKinds
	case FamilySpell:
		return SpellKinds
	}
	return nil
}
