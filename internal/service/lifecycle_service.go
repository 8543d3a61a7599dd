package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/clock"
	kafka "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/kafka"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/kafka/producer"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/phase"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/policy"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/reconcile"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

type LifecycleService interface {
	Watch(ctx context.Context, sessionID string) error
	Unwatch(sessionID string)
	GetStatus(ctx context.Context, sessionID string) (*SessionStatusOutput, error)
	JoinSession(ctx context.Context, in JoinSessionInput) (*JoinSessionOutput, error)
	RequestCancellation(ctx context.Context, in RequestCancellationInput) (*RequestCancellationOutput, error)

	// Push channel handlers
	HandleStatusChanged(ctx context.Context, in StatusChangedInput) error
	HandleInactivity(ctx context.Context, in InactivityInput) error

	Stop()
}

// watchedSession is the live tracking state for one session on screen: the
// last snapshot, the last effective phase, and at most one armed
// boundary-cross timer.
type watchedSession struct {
	snapshot  *models.ScheduledSession
	epoch     int64
	lastPhase models.SessionPhase
	delivered bool
	boundary  *time.Timer
	recSub    *reconcile.Subscription
}

type lifecycleService struct {
	cfg      config.SessionConfig
	loc      *time.Location
	clk      *clock.Clock
	eng      *phase.Engine
	rec      *reconcile.Reconciler
	pol      *policy.Engine
	ssSvc    SessionService
	backend  BookingBackend
	presence PresenceGateway
	prod     producer.Producer
	view     *gocache.Cache
	l        logger.Logger

	mu       sync.Mutex
	watched  map[string]*watchedSession
	clockSub *clock.Subscription
}

func NewLifecycleService(
	cfg config.SessionConfig,
	clk *clock.Clock,
	eng *phase.Engine,
	rec *reconcile.Reconciler,
	pol *policy.Engine,
	ssSvc SessionService,
	backend BookingBackend,
	presence PresenceGateway,
	prod producer.Producer,
	l logger.Logger,
) LifecycleService {
	return &lifecycleService{
		cfg:      cfg,
		loc:      cfg.Location(),
		clk:      clk,
		eng:      eng,
		rec:      rec,
		pol:      pol,
		ssSvc:    ssSvc,
		backend:  backend,
		presence: presence,
		prod:     prod,
		view:     gocache.New(cfg.TickInterval*2, 5*time.Minute),
		l:        l,
		watched:  make(map[string]*watchedSession),
	}
}

// Watch registers a session for per-tick phase tracking. The first watched
// session subscribes the service to the shared clock; the last Unwatch
// releases it.
func (s *lifecycleService) Watch(ctx context.Context, sessionID string) error {
	ss, err := s.ssSvc.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	epoch := ss.Epoch(s.loc)
	s.rec.LoadSnapshot(ctx, sessionID, epoch)

	now := s.clk.Now()
	res := s.eng.Compute(ss, now)
	eff := s.rec.Effective(sessionID, res.Phase)

	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.watched[sessionID]; ok {
		// Already watched: adopt the fresh snapshot; a changed start
		// supersedes the armed boundary timer.
		s.adoptSnapshotLocked(ctx, w, ss, epoch)
		return nil
	}

	w := &watchedSession{
		snapshot:  ss,
		epoch:     epoch,
		lastPhase: eff,
	}
	w.recSub = s.rec.OnAuthoritativeChange(sessionID, func(ch reconcile.Change) {
		s.view.Delete(statusKey(ch.SessionID))
	})
	s.watched[sessionID] = w

	s.armBoundaryLocked(w, sessionID, now)

	if s.clockSub == nil {
		s.clockSub = s.clk.Subscribe(s.onTick)
	}

	s.l.Infof(ctx, "service.lifecycleService.Watch: tracking session %s in phase %s", sessionID, eff)

	return nil
}

func (s *lifecycleService) Unwatch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unwatchLocked(sessionID)
}

func (s *lifecycleService) unwatchLocked(sessionID string) {
	w, ok := s.watched[sessionID]
	if !ok {
		return
	}

	if w.boundary != nil {
		w.boundary.Stop()
		w.boundary = nil
	}
	if w.recSub != nil {
		w.recSub.Unsubscribe()
	}
	delete(s.watched, sessionID)
	s.rec.Forget(sessionID)
	s.view.Delete(statusKey(sessionID))

	if len(s.watched) == 0 && s.clockSub != nil {
		s.clockSub.Unsubscribe()
		s.clockSub = nil
	}
}

func (s *lifecycleService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.watched {
		s.unwatchLocked(id)
	}
}

// adoptSnapshotLocked swaps in a fresh snapshot. Requires s.mu held.
func (s *lifecycleService) adoptSnapshotLocked(ctx context.Context, w *watchedSession, ss *models.ScheduledSession, epoch int64) {
	if epoch != w.epoch {
		// Reschedule: stale boundary timers must never fire against the
		// new schedule.
		if w.boundary != nil {
			w.boundary.Stop()
			w.boundary = nil
		}
		w.epoch = epoch
		w.delivered = false
		s.rec.LoadSnapshot(ctx, ss.ID, epoch)
	}
	w.snapshot = ss
	s.armBoundaryLocked(w, ss.ID, s.clk.Now())
}

// armBoundaryLocked arms at most one timer for the next time-driven phase
// boundary of the session. Requires s.mu held.
func (s *lifecycleService) armBoundaryLocked(w *watchedSession, sessionID string, now time.Time) {
	if w.boundary != nil {
		w.boundary.Stop()
		w.boundary = nil
	}

	next, ok := s.eng.NextBoundary(w.snapshot, now)
	if !ok {
		return
	}

	w.boundary = time.AfterFunc(time.Until(next), func() {
		s.onBoundary(sessionID)
	})
}

// onBoundary refetches the snapshot when a phase boundary passes, so the
// next render works from backend truth rather than a stale cache.
func (s *lifecycleService) onBoundary(sessionID string) {
	ctx := context.Background()

	s.mu.Lock()
	_, ok := s.watched[sessionID]
	s.mu.Unlock()
	if !ok {
		return
	}

	s.view.Delete(statusKey(sessionID))

	ss, err := s.ssSvc.RefreshSession(ctx, sessionID)
	if err != nil {
		s.l.Warnf(ctx, "service.lifecycleService.onBoundary: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, still := s.watched[sessionID]; still {
		s.adoptSnapshotLocked(ctx, w, ss, ss.Epoch(s.loc))
	}
}

// onTick recomputes every watched session against the shared clock. All
// math is idempotent over now, so coarse or delayed ticks are harmless.
func (s *lifecycleService) onTick(now time.Time) {
	ctx := context.Background()

	s.mu.Lock()
	type entry struct {
		id string
		w  *watchedSession
		ss *models.ScheduledSession
	}
	entries := make([]entry, 0, len(s.watched))
	for id, w := range s.watched {
		entries = append(entries, entry{id: id, w: w, ss: w.snapshot})
	}
	s.mu.Unlock()

	for _, e := range entries {
		res := s.eng.Compute(e.ss, now)
		eff := s.rec.Effective(e.id, res.Phase)

		s.mu.Lock()
		changed := eff != e.w.lastPhase
		if changed {
			e.w.lastPhase = eff
		}
		s.mu.Unlock()

		if !changed {
			continue
		}

		s.view.Delete(statusKey(e.id))

		if err := s.prod.PublishPhaseChanged(ctx, kafka.PhaseChangedEvent{
			SessionID: e.id,
			Phase:     string(eff),
			Countdown: res.CountdownString(),
		}); err != nil {
			s.l.Errorf(ctx, "service.lifecycleService.onTick: %v", err)
		}

		// A push-applied terminal was already settled on the push path,
		// with the emitter's billing semantics; only locally derived
		// terminals bill from the tick.
		if eff.IsTerminal() {
			if _, pushApplied := s.rec.Terminal(e.id); !pushApplied && s.markDelivered(e.id) {
				s.publishDelivery(ctx, e.id, e.ss, eff)
			}
		}
	}
}

// markDelivered reports whether the caller is the first to bill the
// session. Watched sessions share one flag across the push and tick
// paths; for unwatched sessions the reconciler's once-per-terminal apply
// is the only gate needed.
func (s *lifecycleService) markDelivered(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.watched[sessionID]
	if !ok {
		return true
	}
	if w.delivered {
		return false
	}
	w.delivered = true
	return true
}

// publishDelivery emits the billing signal for locally derived terminal
// transitions. A concluded session is always billed; an abandonment is
// billed only when the patient was the one missing.
func (s *lifecycleService) publishDelivery(ctx context.Context, sessionID string, ss *models.ScheduledSession, eff models.SessionPhase) {
	var reason string
	switch eff {
	case models.PhaseConcluded:
		reason = "completed"
	case models.PhaseGraceExpiredAbandoned:
		if ss.PatientJoinedAt != nil {
			// Psychologist no-show refunds the patient; nothing to bill.
			return
		}
		reason = "patient_no_show"
	default:
		return
	}

	if err := s.prod.PublishSessionDelivered(ctx, kafka.SessionDeliveredEvent{
		SessionID: sessionID,
		Reason:    reason,
	}); err != nil {
		s.l.Errorf(ctx, "service.lifecycleService.publishDelivery: %v", err)
	}
}

func (s *lifecycleService) GetStatus(ctx context.Context, sessionID string) (*SessionStatusOutput, error) {
	if cached, ok := s.view.Get(statusKey(sessionID)); ok {
		if out, ok := cached.(*SessionStatusOutput); ok {
			return out, nil
		}
	}

	ss, err := s.snapshotOrLoad(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	res := s.eng.Compute(ss, now)
	eff := s.rec.Effective(sessionID, res.Phase)

	out := &SessionStatusOutput{
		SessionID:   sessionID,
		Phase:       eff,
		JoinAllowed: eff.JoinAllowed(),
	}
	// A push override hides the time-derived countdown and phrase.
	if eff == res.Phase {
		out.Countdown = res.CountdownString()
		out.PhraseKey = res.PhraseKey
	}
	if start, ok := ss.StartTime(s.loc); ok {
		out.ScheduledStart = &start
	}
	if st, ok := s.rec.Terminal(sessionID); ok {
		out.PushStatus = string(st)
	} else if ss.PushStatus != "" {
		out.PushStatus = ss.PushStatus
	}

	s.view.Set(statusKey(sessionID), out, gocache.DefaultExpiration)

	return out, nil
}

func (s *lifecycleService) JoinSession(ctx context.Context, in JoinSessionInput) (*JoinSessionOutput, error) {
	ss, err := s.snapshotOrLoad(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	res := s.eng.Compute(ss, now)
	eff := s.rec.Effective(in.SessionID, res.Phase)

	if !eff.JoinAllowed() {
		if eff.IsTerminal() {
			return nil, ErrSessionTerminal
		}
		return nil, ErrJoinNotAllowed
	}

	tokensReady, err := s.backend.IssueJoinTokens(ctx, in.SessionID)
	if err != nil {
		s.l.Errorf(ctx, "service.lifecycleService.JoinSession: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	out := &JoinSessionOutput{
		SessionID:   in.SessionID,
		TokensReady: tokensReady,
		JoinedAt:    now,
	}

	if !tokensReady {
		return out, nil
	}

	token, err := s.ssSvc.GenerateRoomToken(ctx, ss, in.Role)
	if err != nil {
		return nil, err
	}
	out.RoomToken = token

	if err := s.presence.RecordJoin(ctx, in.SessionID, in.Role, now); err != nil {
		s.l.Warnf(ctx, "service.lifecycleService.JoinSession: %v", err)
	}

	// Watched snapshots are replaced, never mutated, so tick and status
	// reads can keep working from the pointer they already hold.
	joined := *ss
	joined.RecordJoin(in.Role, now)
	if err := s.ssSvc.SaveSession(ctx, &joined); err != nil {
		s.l.Warnf(ctx, "service.lifecycleService.JoinSession: %v", err)
	}
	s.mu.Lock()
	if w, ok := s.watched[in.SessionID]; ok {
		w.snapshot = &joined
	}
	s.mu.Unlock()
	s.view.Delete(statusKey(in.SessionID))

	s.l.Infof(ctx, "service.lifecycleService.JoinSession: %s joined session %s", in.Role, in.SessionID)

	return out, nil
}

func (s *lifecycleService) RequestCancellation(ctx context.Context, in RequestCancellationInput) (*RequestCancellationOutput, error) {
	ss, err := s.snapshotOrLoad(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	start, ok := ss.StartTime(s.loc)
	if !ok {
		return nil, ErrScheduleMissing
	}

	if in.Evidence != nil {
		if err := in.Evidence.Validate(); err != nil {
			return nil, err
		}
	}

	// The deadline is judged at confirmation time, not when the form was
	// opened.
	now := s.clk.Now()
	dec, err := s.pol.Evaluate(start, now, in.ReasonCode, in.Evidence != nil)
	if err != nil {
		return nil, err
	}

	if !policy.Submittable(dec) {
		return nil, ErrEvidenceRequired
	}

	req := &models.CancellationRequest{
		ID:          uuid.NewString(),
		SessionID:   in.SessionID,
		RequestedBy: in.RequestedBy,
		ReasonCode:  in.ReasonCode,
		Evidence:    in.Evidence,
		DeclaredAt:  now,
	}

	if _, err := s.backend.SubmitCancellation(ctx, req); err != nil {
		s.l.Errorf(ctx, "service.lifecycleService.RequestCancellation: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	out := &RequestCancellationOutput{
		RequestID:     req.ID,
		SessionID:     in.SessionID,
		DeadlineClass: dec.DeadlineClass,
		ReasonClass:   dec.ReasonClass,
		Outcome:       dec.Outcome,
		ChargeApplied: dec.Billable,
	}

	if err := s.prod.PublishCancellationRequested(ctx, kafka.CancellationRequestedEvent{
		RequestID:     req.ID,
		SessionID:     in.SessionID,
		RequestedBy:   string(in.RequestedBy),
		ReasonCode:    string(in.ReasonCode),
		Outcome:       string(dec.Outcome),
		ChargeApplied: dec.Billable,
	}); err != nil {
		s.l.Errorf(ctx, "service.lifecycleService.RequestCancellation: %v", err)
	}

	// Granted cancellations resolve the session immediately; pending
	// reviews stay in their current phase until the verdict arrives over
	// the push channel.
	if dec.Outcome == models.OutcomeAutoApproved || dec.Outcome == models.OutcomeApprovedWithCharge {
		st := models.PushCancelledByPatient
		if in.RequestedBy == models.RolePsychologist {
			st = models.PushCancelledByPsychologist
		}
		if _, err := s.rec.ApplyPush(ctx, in.SessionID, ss.Epoch(s.loc), st); err != nil {
			s.l.Warnf(ctx, "service.lifecycleService.RequestCancellation: %v", err)
		}

		if dec.Billable {
			if err := s.prod.PublishSessionDelivered(ctx, kafka.SessionDeliveredEvent{
				SessionID: in.SessionID,
				Reason:    "late_cancellation",
			}); err != nil {
				s.l.Errorf(ctx, "service.lifecycleService.RequestCancellation: %v", err)
			}
		}
	}

	s.l.Infof(ctx, "service.lifecycleService.RequestCancellation: session %s by %s resolved as %s (charge=%t)", in.SessionID, in.RequestedBy, dec.Outcome, dec.Billable)

	return out, nil
}

func (s *lifecycleService) HandleStatusChanged(ctx context.Context, in StatusChangedInput) error {
	st, ok := models.ParsePushStatus(in.Status)
	if !ok {
		s.l.Warnf(ctx, "service.lifecycleService.HandleStatusChanged: unknown status %q for session %s", in.Status, in.SessionID)
		return nil
	}

	applied, err := s.rec.ApplyPush(ctx, in.SessionID, in.Epoch, st)
	if err != nil {
		if err == reconcile.ErrStaleEvent {
			return nil
		}
		return err
	}

	s.view.Delete(statusKey(in.SessionID))

	if applied && st.Billable() && s.markDelivered(in.SessionID) {
		if err := s.prod.PublishSessionDelivered(ctx, kafka.SessionDeliveredEvent{
			SessionID: in.SessionID,
			Reason:    string(st),
		}); err != nil {
			s.l.Errorf(ctx, "service.lifecycleService.HandleStatusChanged: %v", err)
		}
	}

	return nil
}

// HandleInactivity turns a missed grace period into the matching system
// cancellation: the absent participant determines who eats the charge.
func (s *lifecycleService) HandleInactivity(ctx context.Context, in InactivityInput) error {
	st := models.PushSystemCancelledPatient
	if models.ParticipantRole(in.MissingRole) == models.RolePsychologist {
		st = models.PushSystemCancelledPsychologist
	}

	return s.HandleStatusChanged(ctx, StatusChangedInput{
		SessionID: in.SessionID,
		Status:    string(st),
		Epoch:     in.Epoch,
		Timestamp: in.Timestamp,
	})
}

// snapshotOrLoad prefers the watched in-memory snapshot and falls back to
// the session service.
func (s *lifecycleService) snapshotOrLoad(ctx context.Context, sessionID string) (*models.ScheduledSession, error) {
	s.mu.Lock()
	if w, ok := s.watched[sessionID]; ok {
		ss := w.snapshot
		s.mu.Unlock()
		return ss, nil
	}
	s.mu.Unlock()

	return s.ssSvc.GetSession(ctx, sessionID)
}

func statusKey(sessionID string) string {
	return "status:" + sessionID
}
