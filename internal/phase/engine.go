// Package phase computes the lifecycle phase of a scheduled session from
// its start time and the current instant. Computation is pure and total:
// any (session, now) pair resolves to a phase without error, and an
// unresolvable start fails closed to Upcoming with the UI hidden.
package phase

import (
	"time"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/util"
)

// Phrase keys the UI layer maps to localized copy.
const (
	PhraseStartsIn   = "starts_in"
	PhraseStartedAgo = "started_ago"
	PhraseHidden     = "hidden"
)

type Result struct {
	Phase     models.SessionPhase
	Countdown *time.Duration
	PhraseKey string
}

// CountdownString renders the countdown for display, empty when none.
func (r Result) CountdownString() string {
	if r.Countdown == nil {
		return ""
	}
	return util.FormatCountdown(*r.Countdown)
}

type Engine struct {
	loc          *time.Location
	joinWindow   time.Duration
	activeWindow time.Duration
	gracePeriod  time.Duration
}

func NewEngine(cfg config.SessionConfig) *Engine {
	return &Engine{
		loc:          cfg.Location(),
		joinWindow:   cfg.JoinWindow,
		activeWindow: cfg.ActiveWindow,
		gracePeriod:  cfg.GracePeriod,
	}
}

// Compute resolves the time-derived phase of ss at now.
//
// All boundary comparisons are inclusive: at exactly joinWindow before the
// start the join control unlocks, at exactly the start the session is
// active, and at exactly activeWindow past the start it still is. The
// grace rule is re-evaluated on every call rather than scheduled once,
// because presence can change at any tick.
func (e *Engine) Compute(ss *models.ScheduledSession, now time.Time) Result {
	start, ok := ss.StartTime(e.loc)
	if !ok {
		// No usable schedule: never auto-unlock the join control.
		return Result{Phase: models.PhaseUpcoming, PhraseKey: PhraseHidden}
	}

	delta := start.Sub(now)

	if delta > e.joinWindow {
		return Result{Phase: models.PhaseUpcoming}
	}

	if delta > 0 {
		d := delta
		return Result{
			Phase:     models.PhaseJoinWindowOpen,
			Countdown: &d,
			PhraseKey: PhraseStartsIn,
		}
	}

	elapsed := -delta

	if elapsed <= e.activeWindow {
		if elapsed >= e.gracePeriod && !ss.BothJoined() {
			return Result{Phase: models.PhaseGraceExpiredAbandoned}
		}

		d := elapsed
		return Result{
			Phase:     models.PhaseActive,
			Countdown: &d,
			PhraseKey: PhraseStartedAgo,
		}
	}

	// Past the active window. A session either participant never joined is
	// an abandonment, not a conclusion; the two terminal states carry
	// different refund semantics.
	if !ss.BothJoined() {
		return Result{Phase: models.PhaseGraceExpiredAbandoned}
	}

	return Result{Phase: models.PhaseConcluded}
}

// NextBoundary returns the next instant at which the phase of ss can
// change by time alone, and false once no time-driven transition remains.
// Used to arm the single refetch timer per session.
func (e *Engine) NextBoundary(ss *models.ScheduledSession, now time.Time) (time.Time, bool) {
	start, ok := ss.StartTime(e.loc)
	if !ok {
		return time.Time{}, false
	}

	for _, b := range []time.Time{
		start.Add(-e.joinWindow),
		start,
		start.Add(e.gracePeriod),
		start.Add(e.activeWindow),
	} {
		if b.After(now) {
			return b, true
		}
	}

	return time.Time{}, false
}
