package service

import (
	"time"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
)

type SessionStatusOutput struct {
	SessionID      string              `json:"session_id"`
	Phase          models.SessionPhase `json:"phase"`
	Countdown      string              `json:"countdown,omitempty"`
	PhraseKey      string              `json:"phrase_key,omitempty"`
	ScheduledStart *time.Time          `json:"scheduled_start,omitempty"`
	PushStatus     string              `json:"push_status,omitempty"`
	JoinAllowed    bool                `json:"join_allowed"`
}

type JoinSessionInput struct {
	SessionID string                 `json:"-"`
	Role      models.ParticipantRole `json:"role" validate:"required,oneof=patient psychologist"`
}

type JoinSessionOutput struct {
	SessionID   string    `json:"session_id"`
	TokensReady bool      `json:"tokens_ready"`
	RoomToken   string    `json:"room_token,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

type RequestCancellationInput struct {
	SessionID   string                   `json:"-"`
	RequestedBy models.ParticipantRole   `json:"requested_by" validate:"required,oneof=patient psychologist"`
	ReasonCode  models.ReasonCode        `json:"reason_code,omitempty"`
	Evidence    *models.EvidenceDocument `json:"evidence,omitempty"`
}

type RequestCancellationOutput struct {
	RequestID     string                     `json:"request_id"`
	SessionID     string                     `json:"session_id"`
	DeadlineClass models.DeadlineClass       `json:"deadline_class"`
	ReasonClass   models.ReasonClass         `json:"reason_class,omitempty"`
	Outcome       models.CancellationOutcome `json:"outcome"`
	ChargeApplied bool                       `json:"charge_applied"`
}

type StatusChangedInput struct {
	SessionID string
	Status    string
	Epoch     int64
	Timestamp time.Time
}

type InactivityInput struct {
	SessionID   string
	MissingRole string
	Epoch       int64
	Timestamp   time.Time
}
