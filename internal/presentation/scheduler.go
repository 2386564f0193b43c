// Package presentation carries resolved game activity to the visual layer.
// Nothing here feeds back into the rules: cancelling an effect or never
// acknowledging a combat step leaves the game state untouched.
package presentation

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Category groups cosmetic effects so they can be cancelled together.
type Category string

const (
	CategorySummon       Category = "summon"
	CategoryAttack       Category = "attack"
	CategoryDamage       Category = "damage"
	CategoryHeal         Category = "heal"
	CategorySpell        Category = "spell"
	CategoryDeath        Category = "death"
	CategoryBattlecry    Category = "battlecry"
	CategoryDeathrattle  Category = "deathrattle"
	CategoryBuff         Category = "buff"
	CategoryAnnouncement Category = "announcement"
	CategoryParticle     Category = "particle"
	CategoryTransition   Category = "transition"
	CategoryShuffle      Category = "shuffle"
)

// Priority orders concurrently active effects for rendering.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return "unknown"
}

// DefaultEffectDuration applies when an effect is scheduled without one.
const DefaultEffectDuration = 500 * time.Millisecond

// Effect is one timed cosmetic effect.
type Effect struct {
	ID        string            `json:"id"`
	Category  Category          `json:"category"`
	Priority  Priority          `json:"priority"`
	Duration  time.Duration     `json:"duration"`
	Phase     string            `json:"phase,omitempty"`
	SourceID  string            `json:"source_id,omitempty"`
	TargetID  string            `json:"target_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	StartedAt time.Time         `json:"started_at"`
}

type scheduled struct {
	effect Effect
	timer  *time.Timer
}

// Scheduler tracks running effects and their expiry timers.
type Scheduler struct {
	logger *zap.Logger
	notify func(Message)

	mu     sync.Mutex
	phase  string
	active map[string]*scheduled
}

// NewScheduler creates a scheduler. notify, when set, receives a message
// for every scheduled, cancelled and finished effect.
func NewScheduler(logger *zap.Logger, notify func(Message)) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger,
		notify: notify,
		active: make(map[string]*scheduled),
	}
}

// Schedule starts an effect and returns its id. Effects without a phase
// join the current one.
func (s *Scheduler) Schedule(e Effect) string {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Duration <= 0 {
		e.Duration = DefaultEffectDuration
	}
	if e.Data != nil {
		e.Data = cloneData(e.Data)
	}
	e.StartedAt = time.Now()

	s.mu.Lock()
	if e.Phase == "" {
		e.Phase = s.phase
	}
	if prev, found := s.active[e.ID]; found {
		prev.timer.Stop()
	}
	id := e.ID
	entry := &scheduled{effect: e}
	entry.timer = time.AfterFunc(e.Duration, func() { s.finish(id, entry) })
	s.active[id] = entry
	s.mu.Unlock()

	s.logger.Debug("effect scheduled",
		zap.String("effect_id", id),
		zap.String("category", string(e.Category)),
		zap.Duration("duration", e.Duration),
	)
	s.publish(MessageEffect, e)
	return id
}

func (s *Scheduler) finish(id string, entry *scheduled) {
	s.mu.Lock()
	if s.active[id] != entry {
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	s.mu.Unlock()
	s.publish(MessageEffectFinished, entry.effect)
}

// Cancel stops one effect. It reports whether the effect was running.
func (s *Scheduler) Cancel(id string) bool {
	return s.cancelWhere(func(e Effect) bool { return e.ID == id }) > 0
}

// CancelCategory stops every running effect of a category.
func (s *Scheduler) CancelCategory(c Category) int {
	return s.cancelWhere(func(e Effect) bool { return e.Category == c })
}

// CancelPhase stops every running effect started in a phase.
func (s *Scheduler) CancelPhase(phase string) int {
	return s.cancelWhere(func(e Effect) bool { return e.Phase == phase })
}

// CancelAll stops everything.
func (s *Scheduler) CancelAll() int {
	return s.cancelWhere(func(Effect) bool { return true })
}

// SetPhase moves to a new phase and cancels what the previous phase left
// running. It returns the number of cancelled effects.
func (s *Scheduler) SetPhase(phase string) int {
	s.mu.Lock()
	prev := s.phase
	s.phase = phase
	s.mu.Unlock()
	if prev == phase {
		return 0
	}
	return s.CancelPhase(prev)
}

// Phase returns the current phase.
func (s *Scheduler) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Scheduler) cancelWhere(match func(Effect) bool) int {
	s.mu.Lock()
	var cancelled []Effect
	for id, entry := range s.active {
		if !match(entry.effect) {
			continue
		}
		entry.timer.Stop()
		delete(s.active, id)
		cancelled = append(cancelled, entry.effect)
	}
	s.mu.Unlock()

	sortEffects(cancelled)
	for _, e := range cancelled {
		s.publish(MessageEffectCancelled, e)
	}
	return len(cancelled)
}

// Active returns the running effects, highest priority first.
func (s *Scheduler) Active() []Effect {
	return s.collect(func(Effect) bool { return true })
}

// ActiveByCategory returns the running effects of one category.
func (s *Scheduler) ActiveByCategory(c Category) []Effect {
	return s.collect(func(e Effect) bool { return e.Category == c })
}

func (s *Scheduler) collect(match func(Effect) bool) []Effect {
	s.mu.Lock()
	out := make([]Effect, 0, len(s.active))
	for _, entry := range s.active {
		if match(entry.effect) {
			out = append(out, entry.effect)
		}
	}
	s.mu.Unlock()
	sortEffects(out)
	return out
}

func (s *Scheduler) publish(t MessageType, e Effect) {
	if s.notify == nil {
		return
	}
	s.notify(Message{Type: t, Effect: &e, Sent: time.Now()})
}

func sortEffects(effects []Effect) {
	slices.SortFunc(effects, func(a, b Effect) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func cloneData(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
