package presentation

import (
	"context"
	"sync"
	"time"

	"github.com/norsecards/ragnarok-engine/internal/game/combat"
	"github.com/norsecards/ragnarok-engine/internal/game/rules"
	"github.com/norsecards/ragnarok-engine/internal/game/state"
	"go.uber.org/zap"
)

// MessageType names what a Message carries.
type MessageType string

const (
	MessageCombatStep      MessageType = "combat_step"
	MessageDamageApplied   MessageType = "damage_applied"
	MessageStepComplete    MessageType = "step_complete"
	MessageEffect          MessageType = "effect"
	MessageEffectCancelled MessageType = "effect_cancelled"
	MessageEffectFinished  MessageType = "effect_finished"
	MessageEvent           MessageType = "event"
)

// Message is one item delivered to queue subscribers.
type Message struct {
	Type   MessageType        `json:"type"`
	GameID string             `json:"game_id,omitempty"`
	Step   *combat.CombatStep `json:"step,omitempty"`
	Effect *Effect            `json:"effect,omitempty"`
	Event  *rules.Event       `json:"event,omitempty"`
	Sent   time.Time          `json:"sent"`
}

// DefaultStepDuration is how long Run plays one combat step.
const DefaultStepDuration = 800 * time.Millisecond

// QueueOptions configures a Queue.
type QueueOptions struct {
	// StepDuration is the playback time of one combat step in Run.
	StepDuration time.Duration
	// OnComplete is called, without queue locks held, after a step has
	// been acknowledged as complete.
	OnComplete func(stepID string)
	Logger     *zap.Logger
}

type inFlight struct {
	step          combat.CombatStep
	damageApplied bool
}

// Queue holds the resolved combat steps of one game in FIFO order and
// hands them out one at a time. The game state has already changed by the
// time a step arrives here; acknowledgements are bookkeeping only.
type Queue struct {
	gameID       string
	logger       *zap.Logger
	stepDuration time.Duration
	onComplete   func(string)
	scheduler    *Scheduler

	mu      sync.Mutex
	steps   []combat.CombatStep
	current *inFlight
	subs    map[int]chan Message
	nextSub int
	closed  bool
	wake    chan struct{}
}

// NewQueue creates the presentation queue of a game.
func NewQueue(gameID string, opts QueueOptions) *Queue {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StepDuration <= 0 {
		opts.StepDuration = DefaultStepDuration
	}
	q := &Queue{
		gameID:       gameID,
		logger:       logger.With(zap.String("game_id", gameID)),
		stepDuration: opts.StepDuration,
		onComplete:   opts.OnComplete,
		subs:         make(map[int]chan Message),
		wake:         make(chan struct{}, 1),
	}
	q.scheduler = NewScheduler(q.logger, q.broadcast)
	return q
}

// GameID returns the game the queue belongs to.
func (q *Queue) GameID() string {
	return q.gameID
}

// Scheduler returns the cosmetic effect scheduler of the game.
func (q *Queue) Scheduler() *Scheduler {
	return q.scheduler
}

// PushStep appends a resolved step.
func (q *Queue) PushStep(step combat.CombatStep) error {
	if !step.Resolved() {
		return state.NewError(state.KindInvalidAction, "present step", "step %s is %s", step.ID, step.Phase)
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return state.NewError(state.KindGameOver, "present step", "queue for %s is closed", q.gameID)
	}
	if q.holds(step.ID) {
		q.mu.Unlock()
		return state.NewError(state.KindInvalidAction, "present step", "step %s already queued", step.ID)
	}
	q.steps = append(q.steps, step)
	depth := len(q.steps)
	q.mu.Unlock()

	q.logger.Debug("combat step queued for playback", zap.String("step_id", step.ID), zap.Int("depth", depth))
	q.signal()
	return nil
}

func (q *Queue) holds(id string) bool {
	if q.current != nil && q.current.step.ID == id {
		return true
	}
	for _, s := range q.steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Next takes the head step and marks it in flight. It returns false while
// another step is in flight or the queue is empty.
func (q *Queue) Next() (combat.CombatStep, bool) {
	q.mu.Lock()
	if q.current != nil || len(q.steps) == 0 {
		q.mu.Unlock()
		return combat.CombatStep{}, false
	}
	step := q.steps[0]
	q.steps = q.steps[1:]
	q.current = &inFlight{step: step}
	q.mu.Unlock()

	q.broadcast(Message{Type: MessageCombatStep, Step: &step, Sent: time.Now()})
	return step, true
}

// InFlight returns the step being played, if any.
func (q *Queue) InFlight() (combat.CombatStep, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return combat.CombatStep{}, false
	}
	return q.current.step, true
}

// Len returns the number of steps waiting behind the one in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.steps)
}

// MarkDamageApplied records that the damage of the in-flight step is now
// visible. Repeated calls are ignored.
func (q *Queue) MarkDamageApplied(stepID string) error {
	q.mu.Lock()
	if err := q.checkInFlight(stepID); err != nil {
		q.mu.Unlock()
		return err
	}
	if q.current.damageApplied {
		q.mu.Unlock()
		return nil
	}
	q.current.damageApplied = true
	step := q.current.step
	q.mu.Unlock()

	q.broadcast(Message{Type: MessageDamageApplied, Step: &step, Sent: time.Now()})
	return nil
}

// DamageApplied reports whether the in-flight step was acknowledged as
// showing its damage.
func (q *Queue) DamageApplied(stepID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current != nil && q.current.step.ID == stepID && q.current.damageApplied
}

// Complete finishes the in-flight step and frees the queue for the next.
func (q *Queue) Complete(stepID string) error {
	q.mu.Lock()
	if err := q.checkInFlight(stepID); err != nil {
		q.mu.Unlock()
		return err
	}
	step := q.current.step
	q.current = nil
	q.mu.Unlock()

	q.broadcast(Message{Type: MessageStepComplete, Step: &step, Sent: time.Now()})
	if q.onComplete != nil {
		q.onComplete(stepID)
	}
	q.signal()
	return nil
}

func (q *Queue) checkInFlight(stepID string) error {
	if q.current == nil {
		return state.NewError(state.KindEntityNotFound, "acknowledge step", "no step in flight")
	}
	if q.current.step.ID != stepID {
		return state.NewError(state.KindInvalidAction, "acknowledge step", "step %s is not in flight", stepID)
	}
	return nil
}

// PublishEvent forwards a game event to subscribers.
func (q *Queue) PublishEvent(evt rules.Event) {
	q.broadcast(Message{Type: MessageEvent, Event: &evt, Sent: time.Now()})
}

// Subscribe returns a channel receiving every message from now on and a
// function that ends the subscription. Messages are dropped for a
// subscriber whose buffer is full.
func (q *Queue) Subscribe(buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Message, buffer)
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	handle := q.nextSub
	q.nextSub++
	q.subs[handle] = ch
	q.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			if c, found := q.subs[handle]; found {
				delete(q.subs, handle)
				close(c)
			}
		})
	}
}

func (q *Queue) broadcast(msg Message) {
	msg.GameID = q.gameID
	q.mu.Lock()
	defer q.mu.Unlock()
	for handle, ch := range q.subs {
		select {
		case ch <- msg:
		default:
			q.logger.Warn("presentation subscriber lagging, message dropped",
				zap.Int("subscriber", handle),
				zap.String("type", string(msg.Type)),
			)
		}
	}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close cancels running effects and ends every subscription. Steps still
// queued are discarded.
func (q *Queue) Close() {
	q.scheduler.CancelAll()
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.steps = nil
	q.current = nil
	for handle, ch := range q.subs {
		delete(q.subs, handle)
		close(ch)
	}
}

// Run plays queued steps until ctx is done: each step gets an attack
// effect, its damage is acknowledged halfway through and the step is
// completed at the end of StepDuration.
func (q *Queue) Run(ctx context.Context) error {
	for {
		step, ok := q.Next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-q.wake:
				continue
			}
		}
		if err := q.play(ctx, step); err != nil {
			return err
		}
	}
}

func (q *Queue) play(ctx context.Context, step combat.CombatStep) error {
	half := q.stepDuration / 2
	q.scheduler.Schedule(Effect{
		Category: CategoryAttack,
		Priority: PriorityHigh,
		Duration: half,
		Phase:    step.ID,
		SourceID: step.Attacker.ID,
		TargetID: step.Defender.ID,
	})
	if err := sleep(ctx, half); err != nil {
		return err
	}
	if err := q.MarkDamageApplied(step.ID); err != nil {
		q.logger.Warn("damage acknowledgement failed", zap.String("step_id", step.ID), zap.Error(err))
	}
	for _, e := range impactEffects(step, q.stepDuration-half) {
		q.scheduler.Schedule(e)
	}
	if err := sleep(ctx, q.stepDuration-half); err != nil {
		return err
	}
	if err := q.Complete(step.ID); err != nil {
		q.logger.Warn("step completion failed", zap.String("step_id", step.ID), zap.Error(err))
	}
	return nil
}

// impactEffects describes what a resolved step looks like once its damage
// lands.
func impactEffects(step combat.CombatStep, d time.Duration) []Effect {
	var out []Effect
	if o := step.Outcome; o != nil {
		if o.Hit != nil && o.Hit.Total() > 0 {
			out = append(out, Effect{Category: CategoryDamage, Priority: PriorityNormal, Duration: d, Phase: step.ID, SourceID: step.Attacker.ID, TargetID: step.Defender.ID})
		}
		if o.Counter != nil && o.Counter.Total() > 0 {
			out = append(out, Effect{Category: CategoryDamage, Priority: PriorityNormal, Duration: d, Phase: step.ID, SourceID: step.Defender.ID, TargetID: step.Attacker.ID})
		}
		for _, id := range o.Died {
			out = append(out, Effect{Category: CategoryDeath, Priority: PriorityHigh, Duration: d, Phase: step.ID, TargetID: id})
		}
		if o.GameOver {
			out = append(out, Effect{Category: CategoryAnnouncement, Priority: PriorityCritical, Duration: d, Phase: step.ID})
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
