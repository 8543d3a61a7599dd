package models

import (
	"time"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/util"
)

type ParticipantRole string

const (
	RolePatient      ParticipantRole = "patient"
	RolePsychologist ParticipantRole = "psychologist"
)

func ParseParticipantRole(raw string) (ParticipantRole, bool) {
	switch ParticipantRole(raw) {
	case RolePatient, RolePsychologist:
		return ParticipantRole(raw), true
	}
	return "", false
}

// ScheduledSession is the read model delivered by the booking backend.
// ScheduledStart is ground truth; Date/Time are legacy fallbacks that are
// only consulted when ScheduledStart is absent.
type ScheduledSession struct {
	ID                   string     `json:"id"`
	PatientID            string     `json:"patient_id"`
	PsychologistID       string     `json:"psychologist_id"`
	ScheduledStart       *time.Time `json:"scheduled_start,omitempty"`
	Date                 string     `json:"date,omitempty"`
	Time                 string     `json:"time,omitempty"`
	PatientJoinedAt      *time.Time `json:"patient_joined_at,omitempty"`
	PsychologistJoinedAt *time.Time `json:"psychologist_joined_at,omitempty"`
	PushStatus           string     `json:"push_status,omitempty"`
	RescheduledFrom      *time.Time `json:"rescheduled_from,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// StartTime resolves the authoritative start of the session. ScheduledStart
// always wins; the Date/Time pair is composed in loc only as a fallback.
func (s *ScheduledSession) StartTime(loc *time.Location) (time.Time, bool) {
	if s.ScheduledStart != nil && !s.ScheduledStart.IsZero() {
		return s.ScheduledStart.In(loc), true
	}

	start, err := util.ComposeDateTime(s.Date, s.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

// Epoch identifies the scheduling generation of the session. A reschedule
// produces a new epoch, which invalidates push events aimed at the old one.
func (s *ScheduledSession) Epoch(loc *time.Location) int64 {
	start, ok := s.StartTime(loc)
	if !ok {
		return 0
	}
	return start.Unix()
}

func (s *ScheduledSession) BothJoined() bool {
	return s.PatientJoinedAt != nil && s.PsychologistJoinedAt != nil
}

func (s *ScheduledSession) MissingRoles() []ParticipantRole {
	var missing []ParticipantRole
	if s.PatientJoinedAt == nil {
		missing = append(missing, RolePatient)
	}
	if s.PsychologistJoinedAt == nil {
		missing = append(missing, RolePsychologist)
	}
	return missing
}

func (s *ScheduledSession) RecordJoin(role ParticipantRole, at time.Time) {
	switch role {
	case RolePatient:
		if s.PatientJoinedAt == nil {
			s.PatientJoinedAt = &at
		}
	case RolePsychologist:
		if s.PsychologistJoinedAt == nil {
			s.PsychologistJoinedAt = &at
		}
	}
	s.UpdatedAt = at
}

// SessionPhase is the resolved lifecycle state of a session at an instant.
type SessionPhase string

const (
	PhaseUpcoming                SessionPhase = "upcoming"
	PhaseJoinWindowOpen          SessionPhase = "join_window_open"
	PhaseActive                  SessionPhase = "active"
	PhaseGraceExpiredAbandoned   SessionPhase = "grace_expired_abandoned"
	PhaseConcluded               SessionPhase = "concluded"
	PhaseCancelledByPatient      SessionPhase = "cancelled_by_patient"
	PhaseCancelledByPsychologist SessionPhase = "cancelled_by_psychologist"
	PhaseCancelledBySystem       SessionPhase = "cancelled_by_system"
)

func (p SessionPhase) IsTerminal() bool {
	switch p {
	case PhaseGraceExpiredAbandoned, PhaseConcluded,
		PhaseCancelledByPatient, PhaseCancelledByPsychologist, PhaseCancelledBySystem:
		return true
	}
	return false
}

// Rank orders the non-terminal progression so that advisory push events can
// unlock a phase without ever regressing one. Terminal phases outrank all
// time-derived phases.
func (p SessionPhase) Rank() int {
	switch p {
	case PhaseUpcoming:
		return 0
	case PhaseJoinWindowOpen:
		return 1
	case PhaseActive:
		return 2
	default:
		return 3
	}
}

func (p SessionPhase) JoinAllowed() bool {
	return p == PhaseJoinWindowOpen || p == PhaseActive
}
