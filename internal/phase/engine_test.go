package phase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
)

func testEngine() *Engine {
	return NewEngine(config.SessionConfig{
		JoinWindow:   10 * time.Minute,
		ActiveWindow: 50 * time.Minute,
		GracePeriod:  10 * time.Minute,
	})
}

func sessionStartingAt(start time.Time) *models.ScheduledSession {
	return &models.ScheduledSession{
		ID:             "s-1",
		PatientID:      "p-1",
		PsychologistID: "d-1",
		ScheduledStart: &start,
	}
}

func withBothJoined(ss *models.ScheduledSession, at time.Time) *models.ScheduledSession {
	ss.PatientJoinedAt = &at
	ss.PsychologistJoinedAt = &at
	return ss
}

func TestComputeBoundaries(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)

	testCases := []struct {
		name          string
		now           time.Time
		bothJoined    bool
		expectedPhase models.SessionPhase
		expectedCount string
		expectedKey   string
	}{
		{
			name:          "well before the join window",
			now:           start.Add(-15 * time.Minute),
			expectedPhase: models.PhaseUpcoming,
		},
		{
			name:          "one second outside the join window",
			now:           start.Add(-10*time.Minute - time.Second),
			expectedPhase: models.PhaseUpcoming,
		},
		{
			name:          "exactly at the join window boundary",
			now:           start.Add(-10 * time.Minute),
			expectedPhase: models.PhaseJoinWindowOpen,
			expectedCount: "10:00",
			expectedKey:   PhraseStartsIn,
		},
		{
			name:          "inside the join window",
			now:           start.Add(-9*time.Minute - 59*time.Second),
			expectedPhase: models.PhaseJoinWindowOpen,
			expectedCount: "09:59",
			expectedKey:   PhraseStartsIn,
		},
		{
			name:          "exactly at the scheduled start",
			now:           start,
			expectedPhase: models.PhaseActive,
			expectedCount: "00:00",
			expectedKey:   PhraseStartedAgo,
		},
		{
			name:          "inside the grace period with nobody joined",
			now:           start.Add(9*time.Minute + 59*time.Second),
			expectedPhase: models.PhaseActive,
			expectedCount: "09:59",
			expectedKey:   PhraseStartedAgo,
		},
		{
			name:          "grace period expired with nobody joined",
			now:           start.Add(10 * time.Minute),
			expectedPhase: models.PhaseGraceExpiredAbandoned,
		},
		{
			name:          "grace period expired but both joined",
			now:           start.Add(10 * time.Minute),
			bothJoined:    true,
			expectedPhase: models.PhaseActive,
			expectedCount: "10:00",
			expectedKey:   PhraseStartedAgo,
		},
		{
			name:          "near the end of the active window",
			now:           start.Add(49*time.Minute + 59*time.Second),
			bothJoined:    true,
			expectedPhase: models.PhaseActive,
			expectedCount: "49:59",
			expectedKey:   PhraseStartedAgo,
		},
		{
			name:          "exactly at the end of the active window",
			now:           start.Add(50 * time.Minute),
			bothJoined:    true,
			expectedPhase: models.PhaseActive,
			expectedCount: "50:00",
			expectedKey:   PhraseStartedAgo,
		},
		{
			name:          "just past the active window",
			now:           start.Add(50*time.Minute + time.Second),
			bothJoined:    true,
			expectedPhase: models.PhaseConcluded,
		},
		{
			name:          "past the active window and never joined",
			now:           start.Add(55 * time.Minute),
			expectedPhase: models.PhaseGraceExpiredAbandoned,
		},
		{
			name:          "long past the active window and never joined",
			now:           start.Add(24 * time.Hour),
			expectedPhase: models.PhaseGraceExpiredAbandoned,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ss := sessionStartingAt(start)
			if tc.bothJoined {
				withBothJoined(ss, start)
			}

			res := eng.Compute(ss, tc.now)

			assert.Equal(t, tc.expectedPhase, res.Phase)
			assert.Equal(t, tc.expectedCount, res.CountdownString())
			assert.Equal(t, tc.expectedKey, res.PhraseKey)
		})
	}
}

func TestComputeOnlyOneParticipantJoined(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)

	ss := sessionStartingAt(start)
	joined := start.Add(2 * time.Minute)
	ss.PatientJoinedAt = &joined

	res := eng.Compute(ss, start.Add(10*time.Minute))
	assert.Equal(t, models.PhaseGraceExpiredAbandoned, res.Phase)

	res = eng.Compute(ss, start.Add(55*time.Minute))
	assert.Equal(t, models.PhaseGraceExpiredAbandoned, res.Phase)
}

func TestComputeDateTimeFallback(t *testing.T) {
	eng := testEngine()

	ss := &models.ScheduledSession{
		ID:   "s-1",
		Date: "2024-06-01",
		Time: "14:00",
	}

	now := time.Date(2024, 6, 1, 13, 52, 0, 0, time.UTC)
	res := eng.Compute(ss, now)

	assert.Equal(t, models.PhaseJoinWindowOpen, res.Phase)
	assert.Equal(t, "08:00", res.CountdownString())
	assert.Equal(t, PhraseStartsIn, res.PhraseKey)
}

func TestComputeUnresolvableScheduleFailsClosed(t *testing.T) {
	eng := testEngine()

	testCases := []struct {
		name string
		ss   *models.ScheduledSession
	}{
		{name: "no schedule at all", ss: &models.ScheduledSession{ID: "s-1"}},
		{name: "garbage date", ss: &models.ScheduledSession{ID: "s-1", Date: "not-a-date", Time: "14:00"}},
		{name: "garbage time", ss: &models.ScheduledSession{ID: "s-1", Date: "2024-06-01", Time: "2pm"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := eng.Compute(tc.ss, time.Now())

			assert.Equal(t, models.PhaseUpcoming, res.Phase)
			assert.Nil(t, res.Countdown)
			assert.Equal(t, PhraseHidden, res.PhraseKey)
		})
	}
}

func TestNextBoundary(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
	ss := sessionStartingAt(start)

	testCases := []struct {
		name     string
		now      time.Time
		expected time.Time
		ok       bool
	}{
		{
			name:     "before the join window",
			now:      start.Add(-time.Hour),
			expected: start.Add(-10 * time.Minute),
			ok:       true,
		},
		{
			name:     "inside the join window",
			now:      start.Add(-5 * time.Minute),
			expected: start,
			ok:       true,
		},
		{
			name:     "inside the grace period",
			now:      start.Add(3 * time.Minute),
			expected: start.Add(10 * time.Minute),
			ok:       true,
		},
		{
			name:     "after the grace period",
			now:      start.Add(20 * time.Minute),
			expected: start.Add(50 * time.Minute),
			ok:       true,
		},
		{
			name: "past the active window",
			now:  start.Add(time.Hour),
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := eng.NextBoundary(ss, tc.now)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, next.Equal(tc.expected), "expected %s, got %s", tc.expected, next)
			}
		})
	}
}

func TestNextBoundaryWithoutSchedule(t *testing.T) {
	eng := testEngine()

	_, ok := eng.NextBoundary(&models.ScheduledSession{ID: "s-1"}, time.Now())
	assert.False(t, ok)
}
