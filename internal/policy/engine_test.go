package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
)

func testEngine() *Engine {
	return NewEngine(config.SessionConfig{CancelNotice: 24 * time.Hour})
}

func TestEvaluateNoticeBoundary(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		now             time.Time
		reason          models.ReasonCode
		expectedClass   models.DeadlineClass
		expectedOutcome models.CancellationOutcome
		expectedBill    bool
	}{
		{
			name:            "days of notice",
			now:             start.Add(-72 * time.Hour),
			expectedClass:   models.DeadlineWithinPolicyWindow,
			expectedOutcome: models.OutcomeAutoApproved,
		},
		{
			name:            "exactly 24h of notice is still free",
			now:             start.Add(-24 * time.Hour),
			expectedClass:   models.DeadlineWithinPolicyWindow,
			expectedOutcome: models.OutcomeAutoApproved,
		},
		{
			name:            "one second short of the notice",
			now:             start.Add(-24*time.Hour + time.Second),
			reason:          models.ReasonScheduleConflict,
			expectedClass:   models.DeadlinePenaltyWindow,
			expectedOutcome: models.OutcomeApprovedWithCharge,
			expectedBill:    true,
		},
		{
			name:            "minutes before the session",
			now:             start.Add(-30 * time.Minute),
			reason:          models.ReasonRunningLate,
			expectedClass:   models.DeadlinePenaltyWindow,
			expectedOutcome: models.OutcomeApprovedWithCharge,
			expectedBill:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := eng.Evaluate(start, tc.now, tc.reason, false)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedClass, d.DeadlineClass)
			assert.Equal(t, tc.expectedOutcome, d.Outcome)
			assert.Equal(t, tc.expectedBill, d.Billable)
		})
	}
}

func TestEvaluateForceMajeureEvidenceGate(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	now := start.Add(-2 * time.Hour)

	t.Run("without evidence is blocked", func(t *testing.T) {
		d, err := eng.Evaluate(start, now, models.ReasonSuddenIllness, false)
		require.NoError(t, err)

		assert.Equal(t, models.OutcomeEvidenceRequired, d.Outcome)
		assert.True(t, d.RequiresEvidence)
		assert.True(t, d.Billable)
		assert.False(t, Submittable(d))
	})

	t.Run("with evidence goes to review", func(t *testing.T) {
		d, err := eng.Evaluate(start, now, models.ReasonFamilyEmergency, true)
		require.NoError(t, err)

		assert.Equal(t, models.OutcomePendingAdminReview, d.Outcome)
		assert.Equal(t, models.ReasonClassEvidenceRequired, d.ReasonClass)
		assert.True(t, d.Billable)
		assert.True(t, Submittable(d))
	})

	t.Run("outside the penalty window evidence is never needed", func(t *testing.T) {
		d, err := eng.Evaluate(start, start.Add(-48*time.Hour), models.ReasonSuddenIllness, false)
		require.NoError(t, err)

		assert.Equal(t, models.OutcomeAutoApproved, d.Outcome)
		assert.False(t, d.RequiresEvidence)
		assert.False(t, d.Billable)
	})
}

func TestEvaluateNoShow(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	d, err := eng.Evaluate(start, start.Add(-1*time.Hour), models.ReasonNoShow, true)
	require.NoError(t, err)

	assert.Equal(t, models.ReasonClassNotExemptible, d.ReasonClass)
	assert.Equal(t, models.OutcomeApprovedWithCharge, d.Outcome)
	assert.True(t, d.Billable)
}

func TestEvaluateFailsClosed(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	t.Run("zero start", func(t *testing.T) {
		_, err := eng.Evaluate(time.Time{}, start, models.ReasonScheduleConflict, false)
		assert.ErrorIs(t, err, ErrMissingSchedule)
	})

	t.Run("zero now", func(t *testing.T) {
		_, err := eng.Evaluate(start, time.Time{}, models.ReasonScheduleConflict, false)
		assert.ErrorIs(t, err, ErrMissingSchedule)
	})

	t.Run("unknown reason inside the penalty window", func(t *testing.T) {
		_, err := eng.Evaluate(start, start.Add(-time.Hour), models.ReasonCode("motivo_inventado"), false)
		assert.ErrorIs(t, err, ErrUnknownReason)
	})

	t.Run("unknown reason with full notice", func(t *testing.T) {
		_, err := eng.Evaluate(start, start.Add(-48*time.Hour), models.ReasonCode("motivo_inventado"), false)
		assert.ErrorIs(t, err, ErrUnknownReason)
	})

	t.Run("missing reason inside the penalty window", func(t *testing.T) {
		_, err := eng.Evaluate(start, start.Add(-time.Hour), "", false)
		assert.ErrorIs(t, err, ErrReasonRequired)
	})
}

func TestEvaluateFreeCancellationKeepsOptionalReason(t *testing.T) {
	eng := testEngine()
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	d, err := eng.Evaluate(start, start.Add(-48*time.Hour), models.ReasonScheduleConflict, false)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeAutoApproved, d.Outcome)
	assert.Equal(t, models.ReasonClassAutoApprovable, d.ReasonClass)
	assert.False(t, d.Billable)
}
