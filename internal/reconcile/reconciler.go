// Package reconcile merges authoritative push statuses with locally
// computed session phases. Precedence: a terminal push status always wins
// and is sticky; advisory statuses may unlock a phase early but never
// regress one; absent any push input the local phase stands.
package reconcile

import (
	"context"
	"errors"
	"sync"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

// ErrStaleEvent marks a terminal push event aimed at a superseded
// scheduling epoch (the session was rescheduled after the event was sent).
var ErrStaleEvent = errors.New("push event refers to a superseded session schedule")

// Resolve applies the precedence rules to a single (local, push) pair.
// It is pure; stickiness and idempotence live on the Reconciler.
func Resolve(local models.SessionPhase, push *models.PushStatus) models.SessionPhase {
	if push == nil {
		return local
	}

	if terminal, ok := push.TerminalPhase(); ok {
		return terminal
	}

	if advisory, ok := push.AdvisoryPhase(); ok {
		if advisory.Rank() > local.Rank() {
			return advisory
		}
	}

	return local
}

// Change notifies subscribers that a new authoritative terminal status was
// accepted for a session; consumers use it to drop cached session data.
type Change struct {
	SessionID string
	Status    models.PushStatus
	Phase     models.SessionPhase
}

// Invalidator receives exactly one invalidation per accepted terminal
// transition, covering the session record, the upcoming list, and the
// current-session aggregate.
type Invalidator interface {
	InvalidateSession(ctx context.Context, sessionID string) error
}

type sessionState struct {
	epoch    int64
	terminal models.PushStatus
	sticky   models.SessionPhase
	advisory models.SessionPhase
	maxLocal models.SessionPhase

	subs      map[int]func(Change)
	nextSubID int
}

type Reconciler struct {
	mu       sync.Mutex
	inv      Invalidator
	l        logger.Logger
	sessions map[string]*sessionState
}

type Subscription struct {
	once      sync.Once
	rec       *Reconciler
	sessionID string
	id        int
}

func New(inv Invalidator, l logger.Logger) *Reconciler {
	return &Reconciler{
		inv:      inv,
		l:        l,
		sessions: make(map[string]*sessionState),
	}
}

func (r *Reconciler) state(sessionID string) *sessionState {
	st, ok := r.sessions[sessionID]
	if !ok {
		st = &sessionState{
			advisory: models.PhaseUpcoming,
			maxLocal: models.PhaseUpcoming,
			subs:     make(map[int]func(Change)),
		}
		r.sessions[sessionID] = st
	}
	return st
}

// LoadSnapshot records the scheduling epoch of a freshly loaded session
// snapshot. A new epoch supersedes any sticky terminal status carried over
// from the previous schedule.
func (r *Reconciler) LoadSnapshot(ctx context.Context, sessionID string, epoch int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(sessionID)
	if st.epoch == epoch {
		return
	}

	if st.terminal != "" {
		r.l.Infof(ctx, "reconcile.Reconciler.LoadSnapshot: session %s rescheduled, clearing sticky status %s", sessionID, st.terminal)
	}

	st.epoch = epoch
	st.terminal = ""
	st.sticky = ""
	st.advisory = models.PhaseUpcoming
	st.maxLocal = models.PhaseUpcoming
}

// ApplyPush feeds one push status into the reconciler. Terminal statuses
// for a superseded epoch are discarded with ErrStaleEvent; duplicates of
// an already-applied terminal status are a no-op. Pass epoch 0 when the
// event does not carry scheduling information. The boolean reports whether
// a terminal status was newly applied.
func (r *Reconciler) ApplyPush(ctx context.Context, sessionID string, epoch int64, status models.PushStatus) (bool, error) {
	r.mu.Lock()

	st := r.state(sessionID)

	terminal, isTerminal := status.TerminalPhase()
	if !isTerminal {
		if advisory, ok := status.AdvisoryPhase(); ok && advisory.Rank() > st.advisory.Rank() {
			st.advisory = advisory
		}
		r.mu.Unlock()
		return false, nil
	}

	if epoch != 0 && st.epoch != 0 && epoch != st.epoch {
		r.mu.Unlock()
		r.l.Warnf(ctx, "reconcile.Reconciler.ApplyPush: discarding stale %s for session %s", status, sessionID)
		return false, ErrStaleEvent
	}

	if st.terminal != "" {
		// Already terminal: duplicates and late competing statuses produce
		// no further side effects.
		r.mu.Unlock()
		return false, nil
	}

	st.terminal = status
	st.sticky = terminal

	subs := make([]func(Change), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	if err := r.inv.InvalidateSession(ctx, sessionID); err != nil {
		r.l.Errorf(ctx, "reconcile.Reconciler.ApplyPush: %v", err)
	}

	change := Change{SessionID: sessionID, Status: status, Phase: terminal}
	for _, fn := range subs {
		fn(change)
	}

	return true, nil
}

// Effective overlays the push state onto a locally computed phase. The
// result is monotonic within a session epoch: once a more advanced phase
// has been reported it never regresses.
func (r *Reconciler) Effective(sessionID string, local models.SessionPhase) models.SessionPhase {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(sessionID)

	if st.sticky != "" {
		return st.sticky
	}

	if local.Rank() > st.maxLocal.Rank() {
		st.maxLocal = local
	}

	effective := st.maxLocal
	if !effective.IsTerminal() && st.advisory.Rank() > effective.Rank() {
		effective = st.advisory
	}

	return effective
}

// Terminal reports the sticky terminal status of a session, if any.
func (r *Reconciler) Terminal(sessionID string) (models.PushStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.sessions[sessionID]
	if !ok || st.terminal == "" {
		return "", false
	}
	return st.terminal, true
}

// OnAuthoritativeChange subscribes to accepted terminal transitions for a
// session. The returned handle must be disposed when the session leaves
// the screen.
func (r *Reconciler) OnAuthoritativeChange(sessionID string, fn func(Change)) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(sessionID)
	id := st.nextSubID
	st.nextSubID++
	st.subs[id] = fn

	return &Subscription{rec: r, sessionID: sessionID, id: id}
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.rec.mu.Lock()
		defer s.rec.mu.Unlock()

		if st, ok := s.rec.sessions[s.sessionID]; ok {
			delete(st.subs, s.id)
		}
	})
}

// Forget drops all reconciliation state for a session. Used when the
// session is removed from view.
func (r *Reconciler) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
