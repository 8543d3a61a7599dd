package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTimePrefersScheduledStart(t *testing.T) {
	scheduled := time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC)
	ss := &ScheduledSession{
		ID:             "s-1",
		ScheduledStart: &scheduled,
		// Conflicting legacy fields must lose.
		Date: "2024-06-02",
		Time: "09:00",
	}

	start, ok := ss.StartTime(time.UTC)
	require.True(t, ok)
	assert.True(t, start.Equal(scheduled))
}

func TestStartTimeFallsBackToDateAndTime(t *testing.T) {
	ss := &ScheduledSession{ID: "s-1", Date: "2024-06-01", Time: "14:00"}

	start, ok := ss.StartTime(time.UTC)
	require.True(t, ok)
	assert.True(t, start.Equal(time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)))
}

func TestStartTimeUnresolvable(t *testing.T) {
	_, ok := (&ScheduledSession{ID: "s-1"}).StartTime(time.UTC)
	assert.False(t, ok)

	_, ok = (&ScheduledSession{ID: "s-1", Date: "2024-06-01"}).StartTime(time.UTC)
	assert.False(t, ok)
}

func TestEpochTracksStart(t *testing.T) {
	scheduled := time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC)
	ss := &ScheduledSession{ID: "s-1", ScheduledStart: &scheduled}

	assert.Equal(t, scheduled.Unix(), ss.Epoch(time.UTC))

	rescheduled := scheduled.Add(48 * time.Hour)
	ss.ScheduledStart = &rescheduled
	assert.Equal(t, rescheduled.Unix(), ss.Epoch(time.UTC))

	assert.Zero(t, (&ScheduledSession{ID: "s-2"}).Epoch(time.UTC))
}

func TestRecordJoin(t *testing.T) {
	ss := &ScheduledSession{ID: "s-1"}
	assert.Equal(t, []ParticipantRole{RolePatient, RolePsychologist}, ss.MissingRoles())
	assert.False(t, ss.BothJoined())

	first := time.Date(2024, 6, 1, 14, 1, 0, 0, time.UTC)
	ss.RecordJoin(RolePatient, first)
	assert.Equal(t, []ParticipantRole{RolePsychologist}, ss.MissingRoles())

	// The first join timestamp is immutable; rejoining keeps it.
	later := first.Add(5 * time.Minute)
	ss.RecordJoin(RolePatient, later)
	assert.True(t, ss.PatientJoinedAt.Equal(first))

	ss.RecordJoin(RolePsychologist, later)
	assert.True(t, ss.BothJoined())
	assert.Empty(t, ss.MissingRoles())
}

func TestParseParticipantRole(t *testing.T) {
	role, ok := ParseParticipantRole("patient")
	require.True(t, ok)
	assert.Equal(t, RolePatient, role)

	role, ok = ParseParticipantRole("psychologist")
	require.True(t, ok)
	assert.Equal(t, RolePsychologist, role)

	_, ok = ParseParticipantRole("admin")
	assert.False(t, ok)
}

func TestSessionPhaseProperties(t *testing.T) {
	terminal := []SessionPhase{
		PhaseGraceExpiredAbandoned, PhaseConcluded,
		PhaseCancelledByPatient, PhaseCancelledByPsychologist, PhaseCancelledBySystem,
	}
	for _, p := range terminal {
		assert.True(t, p.IsTerminal(), p)
		assert.False(t, p.JoinAllowed(), p)
		assert.Equal(t, 3, p.Rank(), p)
	}

	assert.False(t, PhaseUpcoming.IsTerminal())
	assert.False(t, PhaseUpcoming.JoinAllowed())
	assert.True(t, PhaseJoinWindowOpen.JoinAllowed())
	assert.True(t, PhaseActive.JoinAllowed())

	assert.Less(t, PhaseUpcoming.Rank(), PhaseJoinWindowOpen.Rank())
	assert.Less(t, PhaseJoinWindowOpen.Rank(), PhaseActive.Rank())
	assert.Less(t, PhaseActive.Rank(), PhaseConcluded.Rank())
}
