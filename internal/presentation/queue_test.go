package presentation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/game/combat"
	"github.com/norsecards/ragnarok-engine/internal/game/keywords"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func resolved(id string) combat.CombatStep {
	return combat.CombatStep{
		ID:       id,
		Attacker: combat.Participant{ID: id + "-atk", Name: "Chillwind Yeti", Attack: 4},
		Defender: combat.Participant{ID: id + "-def", Name: "Bloodfen Raptor", Attack: 3},
		Damage:   4,
		Phase:    combat.PhaseResolved,
		Outcome: &combat.Outcome{
			Hit:  &keywords.DamageResult{TargetID: id + "-def", Dealt: 2},
			Died: []string{id + "-def"},
		},
	}
}

func TestQueueRejectsUnresolvedSteps(t *testing.T) {
	q := NewQueue("g", QueueOptions{Logger: zaptest.NewLogger(t)})
	step := resolved("s1")
	step.Phase = combat.PhaseQueued

	err := q.PushStep(step)
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrInvalidAction))
	assert.Equal(t, 0, q.Len())
}

func TestQueueFIFOOneInFlight(t *testing.T) {
	var (
		mu        sync.Mutex
		completed []string
	)
	q := NewQueue("g", QueueOptions{
		Logger: zaptest.NewLogger(t),
		OnComplete: func(id string) {
			mu.Lock()
			defer mu.Unlock()
			completed = append(completed, id)
		},
	})
	require.NoError(t, q.PushStep(resolved("s1")))
	require.NoError(t, q.PushStep(resolved("s2")))
	assert.Error(t, q.PushStep(resolved("s1")), "duplicate step")

	first, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "s1", first.ID)

	_, ok = q.Next()
	assert.False(t, ok, "s2 waits while s1 is in flight")

	assert.Error(t, q.Complete("s2"), "only the in-flight step can complete")
	require.NoError(t, q.MarkDamageApplied("s1"))
	require.NoError(t, q.MarkDamageApplied("s1"))
	assert.True(t, q.DamageApplied("s1"))
	require.NoError(t, q.Complete("s1"))
	assert.Error(t, q.Complete("s1"))

	second, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "s2", second.ID)
	require.NoError(t, q.Complete("s2"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"s1", "s2"}, completed)
}

func TestQueueCompleteWithoutDamageAck(t *testing.T) {
	q := NewQueue("g", QueueOptions{})
	require.NoError(t, q.PushStep(resolved("s1")))
	_, ok := q.Next()
	require.True(t, ok)
	require.NoError(t, q.Complete("s1"))
	_, ok = q.InFlight()
	assert.False(t, ok)
}

func TestQueueSubscribers(t *testing.T) {
	q := NewQueue("g", QueueOptions{Logger: zaptest.NewLogger(t)})
	msgs, cancel := q.Subscribe(16)

	require.NoError(t, q.PushStep(resolved("s1")))
	_, ok := q.Next()
	require.True(t, ok)
	q.PublishEvent(rules.NewEvent(rules.EventTurnEnded, "", "", "self"))
	cancel()
	cancel()

	var types []MessageType
	for m := range msgs {
		assert.Equal(t, "g", m.GameID)
		types = append(types, m.Type)
	}
	assert.Equal(t, []MessageType{MessageCombatStep, MessageEvent}, types)
}

func TestQueueCloseEndsSubscriptions(t *testing.T) {
	q := NewQueue("g", QueueOptions{})
	msgs, _ := q.Subscribe(1)
	q.Scheduler().Schedule(Effect{Category: CategoryBuff, Duration: time.Minute})
	q.Close()
	q.Close()

	for range msgs {
	}
	assert.Empty(t, q.Scheduler().Active())
	assert.True(t, errors.Is(q.PushStep(resolved("s1")), state.ErrGameOver))
}

func TestQueueRunPlaysSteps(t *testing.T) {
	done := make(chan string, 2)
	q := NewQueue("g", QueueOptions{
		Logger:       zaptest.NewLogger(t),
		StepDuration: 20 * time.Millisecond,
		OnComplete:   func(id string) { done <- id },
	})
	msgs, cancel := q.Subscribe(64)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	errc := make(chan error, 1)
	go func() { errc <- q.Run(ctx) }()

	require.NoError(t, q.PushStep(resolved("s1")))
	require.NoError(t, q.PushStep(resolved("s2")))

	for _, want := range []string{"s1", "s2"} {
		select {
		case id := <-done:
			assert.Equal(t, want, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("step %s never completed", want)
		}
	}
	stop()
	assert.ErrorIs(t, <-errc, context.Canceled)

	var damage, deaths int
	for len(msgs) > 0 {
		m := <-msgs
		switch {
		case m.Type == MessageDamageApplied:
			damage++
		case m.Type == MessageEffect && m.Effect.Category == CategoryDeath:
			deaths++
		}
	}
	assert.Equal(t, 2, damage)
	assert.Equal(t, 2, deaths)
}
