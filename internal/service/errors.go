package service

import (
	pkgErrors "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/errors"
)

var (
	ErrSessionNotFound  = pkgErrors.NewBusinessError("SESSION_NOT_FOUND", "session not found")
	ErrSessionTerminal  = pkgErrors.NewBusinessError("SESSION_ENDED", "session has already ended")
	ErrJoinNotAllowed   = pkgErrors.NewBusinessError("JOIN_NOT_OPEN", "join is not open for this session yet")
	ErrScheduleMissing  = pkgErrors.NewBusinessError("SCHEDULE_MISSING", "session has no resolvable schedule")
	ErrEvidenceRequired = pkgErrors.NewBusinessError("EVIDENCE_REQUIRED", "this reason requires an evidence document before submitting")

	// ErrChannelUnavailable marks transient transport failures on actions
	// that need the backend or the realtime channel; callers may retry.
	ErrChannelUnavailable = pkgErrors.NewBusinessError("CHANNEL_UNAVAILABLE", "realtime channel unavailable, try again")
)
