package main

import (
	"context"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/catalog"
	"github.com/norsecards/ragnarok-engine/internal/game"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// director plays both sides of the demo match with a greedy script: play
// whatever is affordable, attack face where taunt allows, end the turn.
// A finished match is replaced by a new one under the same id.
type director struct {
	engine *game.Engine
	logger *zap.Logger
	pace   time.Duration
}

func (d *director) run(ctx context.Context) error {
	for match := 1; ; match++ {
		if _, err := d.engine.CreateGame(game.GameOptions{
			ID:    demoGameID,
			Seed:  uint64(time.Now().UnixNano()),
			Decks: [2][]int{demoDeck, demoDeck},
		}); err != nil {
			return err
		}
		d.logger.Info("demo match started", zap.Int("match", match))

		err := d.play(ctx)
		if err == nil {
			err = d.wait(ctx, 5*d.pace)
		}
		if rmErr := d.engine.RemoveGame(demoGameID); rmErr != nil {
			d.logger.Warn("remove demo match", zap.Error(rmErr))
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (d *director) play(ctx context.Context) error {
	for {
		g, err := d.engine.Snapshot(demoGameID)
		if err != nil {
			return err
		}
		if g.Over {
			return nil
		}
		side := g.Current()
		if err := d.turn(ctx, side); err != nil {
			return err
		}
		if err := d.engine.EndTurn(demoGameID, side); err != nil {
			d.logger.Debug("end turn refused", zap.Stringer("side", side), zap.Error(err))
		}
		if err := d.wait(ctx, d.pace); err != nil {
			return err
		}
	}
}

func (d *director) turn(ctx context.Context, side state.Side) error {
	for d.playOne(side) {
		if err := d.wait(ctx, d.pace); err != nil {
			return err
		}
	}
	g, err := d.engine.Snapshot(demoGameID)
	if err != nil {
		return err
	}
	attackers := []string{g.Player(side).Hero.ID}
	for _, m := range g.Player(side).Battlefield {
		attackers = append(attackers, m.InstanceID)
	}
	for _, id := range attackers {
		if !d.attack(side, id) {
			continue
		}
		if err := d.wait(ctx, d.pace); err != nil {
			return err
		}
	}
	return nil
}

// playOne plays the first affordable card and reports whether it did.
func (d *director) playOne(side state.Side) bool {
	g, err := d.engine.Snapshot(demoGameID)
	if err != nil || g.Over {
		return false
	}
	if c := g.PendingChoice; c != nil && c.Side == side {
		first := 0
		_, err := d.engine.ResolveChoice(demoGameID, side, &first)
		return err == nil
	}
	p := g.Player(side)
	enemy := g.Player(side.Opposite())
	for _, ci := range p.Hand {
		if ci.Cost > p.Mana.Available() {
			continue
		}
		if ci.Card.Type == catalog.TypeMinion && p.BoardFull() {
			continue
		}
		opts := game.PlayOptions{}
		if ci.Card.Type == catalog.TypeSpell {
			opts.TargetID = enemy.Hero.ID
		}
		res, err := d.engine.PlayCard(demoGameID, side, ci.InstanceID, opts)
		if err != nil {
			d.logger.Debug("play refused", zap.String("card", ci.Name()), zap.Error(err))
			continue
		}
		if !res.Success {
			// A failed spell stays in hand.
			d.logger.Debug("play failed", zap.String("card", ci.Name()), zap.Error(res.Err))
			continue
		}
		d.logger.Info("played", zap.Stringer("side", side), zap.String("card", ci.Name()))
		return true
	}
	return false
}

// attack sends attackerID at the enemy hero, or at the first enemy minion
// that will accept the attack.
func (d *director) attack(side state.Side, attackerID string) bool {
	g, err := d.engine.Snapshot(demoGameID)
	if err != nil || g.Over {
		return false
	}
	enemy := g.Player(side.Opposite())
	targets := []string{enemy.Hero.ID}
	for _, m := range enemy.Battlefield {
		targets = append(targets, m.InstanceID)
	}
	for _, target := range targets {
		step, err := d.engine.Attack(demoGameID, side, attackerID, target)
		if err != nil {
			continue
		}
		d.logger.Info("attacked", zap.Stringer("step", step))
		return true
	}
	return false
}

func (d *director) wait(ctx context.Context, pause time.Duration) error {
	t := time.NewTimer(pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
