package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyReason(t *testing.T) {
	testCases := []struct {
		name     string
		code     ReasonCode
		expected ReasonClass
		known    bool
	}{
		{name: "sudden illness needs evidence", code: ReasonSuddenIllness, expected: ReasonClassEvidenceRequired, known: true},
		{name: "family emergency needs evidence", code: ReasonFamilyEmergency, expected: ReasonClassEvidenceRequired, known: true},
		{name: "hospitalization needs evidence", code: ReasonHospitalization, expected: ReasonClassEvidenceRequired, known: true},
		{name: "schedule conflict is generic", code: ReasonScheduleConflict, expected: ReasonClassAutoApprovable, known: true},
		{name: "running late is generic", code: ReasonRunningLate, expected: ReasonClassAutoApprovable, known: true},
		{name: "no-show is not exemptible", code: ReasonNoShow, expected: ReasonClassNotExemptible, known: true},
		{name: "unknown code", code: ReasonCode("ferias"), known: false},
		{name: "empty code", code: ReasonCode(""), known: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			class, ok := ClassifyReason(tc.code)
			assert.Equal(t, tc.known, ok)
			if tc.known {
				assert.Equal(t, tc.expected, class)
			}
		})
	}
}

func TestKnownReasonCodesCoversTaxonomy(t *testing.T) {
	codes := KnownReasonCodes()
	assert.Len(t, codes, len(reasonTaxonomy))

	for _, code := range codes {
		_, ok := ClassifyReason(code)
		assert.True(t, ok)
	}
}

func TestEvidenceDocumentValidate(t *testing.T) {
	testCases := []struct {
		name        string
		doc         EvidenceDocument
		expectedErr error
	}{
		{
			name: "valid pdf",
			doc:  EvidenceDocument{FileName: "atestado.pdf", ContentType: "application/pdf", SizeBytes: 1024},
		},
		{
			name: "valid docx",
			doc: EvidenceDocument{
				FileName:    "laudo.docx",
				ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				SizeBytes:   2048,
			},
		},
		{
			name: "valid png at the size limit",
			doc:  EvidenceDocument{FileName: "foto.png", ContentType: "image/png", SizeBytes: EvidenceMaxSizeBytes},
		},
		{
			name:        "one byte over the limit",
			doc:         EvidenceDocument{FileName: "foto.jpg", ContentType: "image/jpeg", SizeBytes: EvidenceMaxSizeBytes + 1},
			expectedErr: ErrEvidenceTooLarge,
		},
		{
			name:        "unsupported type",
			doc:         EvidenceDocument{FileName: "video.mp4", ContentType: "video/mp4", SizeBytes: 1024},
			expectedErr: ErrEvidenceUnsupportedType,
		},
		{
			name:        "missing file name",
			doc:         EvidenceDocument{ContentType: "application/pdf", SizeBytes: 1024},
			expectedErr: ErrEvidenceIncomplete,
		},
		{
			name:        "missing content type",
			doc:         EvidenceDocument{FileName: "atestado.pdf", SizeBytes: 1024},
			expectedErr: ErrEvidenceIncomplete,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.doc.Validate()
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancellationRequestCancelledPhase(t *testing.T) {
	assert.Equal(t, PhaseCancelledByPatient, (&CancellationRequest{RequestedBy: RolePatient}).CancelledPhase())
	assert.Equal(t, PhaseCancelledByPsychologist, (&CancellationRequest{RequestedBy: RolePsychologist}).CancelledPhase())
	assert.Equal(t, PhaseCancelledBySystem, (&CancellationRequest{}).CancelledPhase())
}
