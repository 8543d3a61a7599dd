// Package policy decides the outcome of cancellation requests. The rules:
// cancelling with at least the configured notice (24h) is always free;
// inside the penalty window a generic reason is accepted but charged, a
// force-majeure reason needs an evidence document and administrative
// review, and unknown input fails closed.
package policy

import (
	"time"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	pkgErrors "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/errors"
)

var (
	ErrMissingSchedule = pkgErrors.NewBusinessError("CANCEL_SCHEDULE_MISSING", "cancellation requires a resolvable scheduled start and request time")
	ErrUnknownReason   = pkgErrors.NewBusinessError("CANCEL_REASON_UNKNOWN", "cancellation reason is not in the known taxonomy")
	ErrReasonRequired  = pkgErrors.NewBusinessError("CANCEL_REASON_REQUIRED", "cancellation inside the penalty window requires a reason")
)

type Decision struct {
	DeadlineClass    models.DeadlineClass       `json:"deadline_class"`
	ReasonClass      models.ReasonClass         `json:"reason_class,omitempty"`
	Outcome          models.CancellationOutcome `json:"outcome"`
	RequiresEvidence bool                       `json:"requires_evidence"`
	// Billable flags the session as delivered for billing. Only the
	// policy-window and accepted force-majeure paths are non-billable.
	Billable bool `json:"billable"`
}

type Engine struct {
	notice time.Duration
}

func NewEngine(cfg config.SessionConfig) *Engine {
	return &Engine{notice: cfg.CancelNotice}
}

// Evaluate classifies a cancellation declared at now against a session
// scheduled at start. It must be called with the instant the user
// confirms, not when the form was opened.
func (e *Engine) Evaluate(start, now time.Time, reason models.ReasonCode, hasEvidence bool) (Decision, error) {
	if start.IsZero() || now.IsZero() {
		return Decision{}, ErrMissingSchedule
	}

	if start.Sub(now) >= e.notice {
		// Free cancellation; a reason is optional and never verified.
		d := Decision{
			DeadlineClass: models.DeadlineWithinPolicyWindow,
			Outcome:       models.OutcomeAutoApproved,
		}
		if reason != "" {
			class, ok := models.ClassifyReason(reason)
			if !ok {
				return Decision{}, ErrUnknownReason
			}
			d.ReasonClass = class
		}
		return d, nil
	}

	if reason == "" {
		return Decision{}, ErrReasonRequired
	}

	class, ok := models.ClassifyReason(reason)
	if !ok {
		return Decision{}, ErrUnknownReason
	}

	d := Decision{
		DeadlineClass: models.DeadlinePenaltyWindow,
		ReasonClass:   class,
	}

	switch class {
	case models.ReasonClassEvidenceRequired:
		d.RequiresEvidence = true
		if !hasEvidence {
			// Not submittable until a document is attached.
			d.Outcome = models.OutcomeEvidenceRequired
			d.Billable = true
			return d, nil
		}
		// Charged up front; reversed only if the review accepts the
		// evidence later.
		d.Outcome = models.OutcomePendingAdminReview
		d.Billable = true
		return d, nil

	case models.ReasonClassNotExemptible:
		d.Outcome = models.OutcomeApprovedWithCharge
		d.Billable = true
		return d, nil

	default: // auto-approvable generic reasons
		d.Outcome = models.OutcomeApprovedWithCharge
		d.Billable = true
		return d, nil
	}
}

// Submittable reports whether a decision allows the request to be sent to
// the backend. Evidence-required outcomes block until a document exists.
func Submittable(d Decision) bool {
	return d.Outcome != models.OutcomeEvidenceRequired
}
