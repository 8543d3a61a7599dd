package kafka

const (
	// Consumed from the realtime sync service.
	TopicSessionStatusChanged = "session.status-changed"
	TopicSessionInactivity    = "session.inactivity"

	// Published by this service.
	TopicSessionPhaseChanged   = "session.phase-changed"
	TopicSessionDelivered      = "session.delivered"
	TopicCancellationRequested = "cancellation.requested"
)
