package service

import (
	"context"
	"time"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
)

// BookingBackend is the booking system of record. Owned elsewhere; this
// service only consumes it.
type BookingBackend interface {
	GetSession(ctx context.Context, sessionID string) (*models.ScheduledSession, error)
	SubmitCancellation(ctx context.Context, req *models.CancellationRequest) (*CancellationSubmitResult, error)
	IssueJoinTokens(ctx context.Context, sessionID string) (bool, error)
}

type CancellationSubmitResult struct {
	Outcome       models.CancellationOutcome `json:"outcome"`
	ChargeApplied bool                       `json:"charge_applied"`
}

// PresenceGateway reports participant join timestamps to the video room
// infrastructure. Consumed, not re-implemented.
type PresenceGateway interface {
	RecordJoin(ctx context.Context, sessionID string, role models.ParticipantRole, at time.Time) error
}
