package models

// PushStatus is a status string delivered over the push channel. The set
// mixes English and legacy Portuguese values; both spellings are part of
// the wire contract and must stay recognized.
type PushStatus string

const (
	// Advisory statuses: may unlock a phase early, never conclude one.
	PushStartingSoon PushStatus = "startingSoon"
	PushStarted      PushStatus = "started"
	PushEndingSoon   PushStatus = "endingSoon"

	// Terminal statuses.
	PushConcluded               PushStatus = "Concluido"
	PushCancelled               PushStatus = "Cancelado"
	PushCancelledByPatient      PushStatus = "cancelled_by_patient"
	PushCancelledByPsychologist PushStatus = "cancelled_by_psychologist"

	// System cancellations raised by the inactivity monitor, named after
	// the participant who failed to show up.
	PushSystemCancelledPatient      PushStatus = "CANCELAMENTO_SISTEMICO_PACIENTE"
	PushSystemCancelledPsychologist PushStatus = "CANCELAMENTO_SISTEMICO_PSICOLOGO"
)

func ParsePushStatus(raw string) (PushStatus, bool) {
	switch PushStatus(raw) {
	case PushStartingSoon, PushStarted, PushEndingSoon,
		PushConcluded, PushCancelled,
		PushCancelledByPatient, PushCancelledByPsychologist,
		PushSystemCancelledPatient, PushSystemCancelledPsychologist:
		return PushStatus(raw), true
	}
	return "", false
}

func (p PushStatus) IsTerminal() bool {
	_, ok := p.TerminalPhase()
	return ok
}

// TerminalPhase maps a terminal push status onto the session phase it
// forces. Advisory statuses report false.
func (p PushStatus) TerminalPhase() (SessionPhase, bool) {
	switch p {
	case PushConcluded:
		return PhaseConcluded, true
	case PushCancelled:
		return PhaseCancelledBySystem, true
	case PushCancelledByPatient:
		return PhaseCancelledByPatient, true
	case PushCancelledByPsychologist:
		return PhaseCancelledByPsychologist, true
	case PushSystemCancelledPatient, PushSystemCancelledPsychologist:
		return PhaseGraceExpiredAbandoned, true
	}
	return "", false
}

// AdvisoryPhase maps an advisory push status onto the phase it is allowed
// to unlock. The reconciler applies it only when it is ahead of the locally
// computed phase.
func (p PushStatus) AdvisoryPhase() (SessionPhase, bool) {
	switch p {
	case PushStartingSoon:
		return PhaseJoinWindowOpen, true
	case PushStarted, PushEndingSoon:
		return PhaseActive, true
	}
	return "", false
}

// Billable reports whether the terminal status counts the session as
// delivered for billing. A patient no-show is billed; a psychologist
// no-show refunds the session.
func (p PushStatus) Billable() bool {
	switch p {
	case PushConcluded, PushSystemCancelledPatient:
		return true
	}
	return false
}
