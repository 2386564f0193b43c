package catalog

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks a set of definitions for structural problems. All problems
// are reported together.
func Validate(defs []Definition) error {
	var err error
	seen := make(map[int]bool, len(defs))
	for i := range defs {
		seen[defs[i].ID] = true
	}
	ids := make(map[int]bool, len(defs))
	for i := range defs {
		def := &defs[i]
		if def.ID <= 0 {
			err = multierr.Append(err, fmt.Errorf("card %q: id must be positive", def.Name))
		}
		if ids[def.ID] {
			err = multierr.Append(err, fmt.Errorf("card %d: duplicate id", def.ID))
		}
		ids[def.ID] = true
		if def.Name == "" {
			err = multierr.Append(err, fmt.Errorf("card %d: name is required", def.ID))
		}
		switch def.Type {
		case TypeMinion:
			if def.Health <= 0 {
				err = multierr.Append(err, fmt.Errorf("card %d: minion health must be positive", def.ID))
			}
		case TypeWeapon:
			if def.Durability <= 0 {
				err = multierr.Append(err, fmt.Errorf("card %d: weapon durability must be positive", def.ID))
			}
		case TypeSpell, TypeHero, TypeSecret, TypeLocation:
		default:
			err = multierr.Append(err, fmt.Errorf("card %d: unknown card type %q", def.ID, def.Type))
		}
		if def.Cost < 0 {
			err = multierr.Append(err, fmt.Errorf("card %d: negative cost", def.ID))
		}
		for _, part := range def.ColossalParts {
			if !seen[part] {
				err = multierr.Append(err, fmt.Errorf("card %d: colossal part %d not in catalog", def.ID, part))
			}
		}
		if def.HasKeyword(KeywordColossal) && len(def.ColossalParts) == 0 {
			err = multierr.Append(err, fmt.Errorf("card %d: colossal minion without parts", def.ID))
		}
	}
	return err
}
