package models

import (
	"time"

	pkgErrors "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/errors"
)

type ReasonCode string

// Force-majeure reasons. Cancelling inside the penalty window with one of
// these requires an evidence document and goes to administrative review.
const (
	ReasonPersonalAccident     ReasonCode = "acidente_ocorrencia_pessoal"
	ReasonSickFamilyMember     ReasonCode = "acompanhamento_familiar_doente"
	ReasonChronicIllnessWorse  ReasonCode = "agravamento_saude_cronica"
	ReasonNaturalDisaster      ReasonCode = "catastrofes_naturais"
	ReasonAcademicObligation   ReasonCode = "compromissos_academicos"
	ReasonWorkObligation       ReasonCode = "compromissos_profissionais"
	ReasonPanicCrisis          ReasonCode = "crise_ansiedade_panico"
	ReasonSuddenIllness        ReasonCode = "doenca_subita"
	ReasonFamilyEmergency      ReasonCode = "emergencia_familiar"
	ReasonFamilyBereavement    ReasonCode = "falecimento_familiar"
	ReasonCarrierOutage        ReasonCode = "falta_conexao_operadora"
	ReasonInternetOutage       ReasonCode = "interrupcao_internet_cliente"
	ReasonHospitalization      ReasonCode = "internacao_hospitalar"
	ReasonLegalObligation      ReasonCode = "obrigacao_legal_judicial"
	ReasonPowerOutage          ReasonCode = "pane_eletrica"
	ReasonEquipmentFailure     ReasonCode = "problemas_equipamento"
	ReasonEmergencyProcedure   ReasonCode = "procedimento_medico_emergencial"
	ReasonRobberyOrViolence    ReasonCode = "roubo_furto_violencia"
)

// Generic reasons. Accepted without evidence, but inside the penalty
// window the session is still charged and counts as delivered.
const (
	ReasonScheduleConflict ReasonCode = "conflito_compromisso"
	ReasonStuckInMeeting   ReasonCode = "preso_reuniao"
	ReasonUnstableInternet ReasonCode = "instabilidade_internet"
	ReasonRunningLate      ReasonCode = "atraso_sessao"
	ReasonNoisyEnvironment ReasonCode = "problemas_barulho_ambiente"
	ReasonPersonalIssues   ReasonCode = "problemas_pessoais"
)

// Non-exemptible reasons: the session is treated as delivered no matter
// what; no review path exists.
const (
	ReasonNoShow ReasonCode = "nao_comparecimento"
)

type ReasonClass string

const (
	ReasonClassAutoApprovable   ReasonClass = "auto_approvable"
	ReasonClassEvidenceRequired ReasonClass = "evidence_required"
	ReasonClassNotExemptible    ReasonClass = "not_exemptible"
)

var reasonTaxonomy = map[ReasonCode]ReasonClass{
	ReasonPersonalAccident:    ReasonClassEvidenceRequired,
	ReasonSickFamilyMember:    ReasonClassEvidenceRequired,
	ReasonChronicIllnessWorse: ReasonClassEvidenceRequired,
	ReasonNaturalDisaster:     ReasonClassEvidenceRequired,
	ReasonAcademicObligation:  ReasonClassEvidenceRequired,
	ReasonWorkObligation:      ReasonClassEvidenceRequired,
	ReasonPanicCrisis:         ReasonClassEvidenceRequired,
	ReasonSuddenIllness:       ReasonClassEvidenceRequired,
	ReasonFamilyEmergency:     ReasonClassEvidenceRequired,
	ReasonFamilyBereavement:   ReasonClassEvidenceRequired,
	ReasonCarrierOutage:       ReasonClassEvidenceRequired,
	ReasonInternetOutage:      ReasonClassEvidenceRequired,
	ReasonHospitalization:     ReasonClassEvidenceRequired,
	ReasonLegalObligation:     ReasonClassEvidenceRequired,
	ReasonPowerOutage:         ReasonClassEvidenceRequired,
	ReasonEquipmentFailure:    ReasonClassEvidenceRequired,
	ReasonEmergencyProcedure:  ReasonClassEvidenceRequired,
	ReasonRobberyOrViolence:   ReasonClassEvidenceRequired,

	ReasonScheduleConflict: ReasonClassAutoApprovable,
	ReasonStuckInMeeting:   ReasonClassAutoApprovable,
	ReasonUnstableInternet: ReasonClassAutoApprovable,
	ReasonRunningLate:      ReasonClassAutoApprovable,
	ReasonNoisyEnvironment: ReasonClassAutoApprovable,
	ReasonPersonalIssues:   ReasonClassAutoApprovable,

	ReasonNoShow: ReasonClassNotExemptible,
}

// ClassifyReason resolves a reason code against the known taxonomy.
// Unknown codes report false and must fail closed at the caller.
func ClassifyReason(code ReasonCode) (ReasonClass, bool) {
	class, ok := reasonTaxonomy[code]
	return class, ok
}

func KnownReasonCodes() []ReasonCode {
	codes := make([]ReasonCode, 0, len(reasonTaxonomy))
	for code := range reasonTaxonomy {
		codes = append(codes, code)
	}
	return codes
}

type DeadlineClass string

const (
	DeadlineWithinPolicyWindow DeadlineClass = "within_policy_window"
	DeadlinePenaltyWindow      DeadlineClass = "penalty_window"
)

type CancellationOutcome string

const (
	OutcomeAutoApproved       CancellationOutcome = "auto_approved"
	OutcomeApprovedWithCharge CancellationOutcome = "approved_with_charge"
	OutcomeEvidenceRequired   CancellationOutcome = "evidence_required"
	OutcomePendingAdminReview CancellationOutcome = "pending_admin_review"
)

const EvidenceMaxSizeBytes = 2 * 1024 * 1024

var evidenceContentTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/png":  {},
	"image/jpeg": {},
}

var (
	ErrEvidenceTooLarge        = pkgErrors.NewBusinessError("EVIDENCE_TOO_LARGE", "evidence document exceeds the 2 MB limit")
	ErrEvidenceUnsupportedType = pkgErrors.NewBusinessError("EVIDENCE_UNSUPPORTED_TYPE", "evidence document type must be PDF, DOCX, PNG or JPEG")
	ErrEvidenceIncomplete      = pkgErrors.NewBusinessError("EVIDENCE_INCOMPLETE", "evidence document is missing its file name or content type")
)

// EvidenceDocument is a typed reference to an already-uploaded file; the
// engine validates the declared metadata, not the bytes.
type EvidenceDocument struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,gt=0"`
}

func (d *EvidenceDocument) Validate() error {
	if d.FileName == "" || d.ContentType == "" {
		return ErrEvidenceIncomplete
	}
	if _, ok := evidenceContentTypes[d.ContentType]; !ok {
		return ErrEvidenceUnsupportedType
	}
	if d.SizeBytes > EvidenceMaxSizeBytes {
		return ErrEvidenceTooLarge
	}
	return nil
}

type CancellationRequest struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"session_id"`
	RequestedBy ParticipantRole   `json:"requested_by"`
	ReasonCode  ReasonCode        `json:"reason_code,omitempty"`
	Evidence    *EvidenceDocument `json:"evidence,omitempty"`
	DeclaredAt  time.Time         `json:"declared_at"`
}

func (r *CancellationRequest) HasEvidence() bool {
	return r.Evidence != nil
}

// CancelledPhase is the terminal phase a granted cancellation resolves to.
func (r *CancellationRequest) CancelledPhase() SessionPhase {
	switch r.RequestedBy {
	case RolePatient:
		return PhaseCancelledByPatient
	case RolePsychologist:
		return PhaseCancelledByPsychologist
	default:
		return PhaseCancelledBySystem
	}
}
