package kafka

import "time"

// Events consumed from the realtime sync service

// StatusChangedEvent carries an authoritative status for one session.
// Epoch is the Unix timestamp of the scheduled start the emitter saw; 0
// when the emitter has no scheduling context.
type StatusChangedEvent struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	Epoch     int64     `json:"epoch,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InactivityEvent reports that a participant failed to show up during the
// grace period; it drives early abandonment.
type InactivityEvent struct {
	SessionID   string    `json:"session_id"`
	MissingRole string    `json:"missing_role"`
	Epoch       int64     `json:"epoch,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Events published by this service

type PhaseChangedEvent struct {
	SessionID string    `json:"session_id"`
	Phase     string    `json:"phase"`
	Countdown string    `json:"countdown,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionDeliveredEvent flags a session as delivered for billing.
type SessionDeliveredEvent struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type CancellationRequestedEvent struct {
	RequestID     string    `json:"request_id"`
	SessionID     string    `json:"session_id"`
	RequestedBy   string    `json:"requested_by"`
	ReasonCode    string    `json:"reason_code,omitempty"`
	Outcome       string    `json:"outcome"`
	ChargeApplied bool      `json:"charge_applied"`
	Timestamp     time.Time `json:"timestamp"`
}
