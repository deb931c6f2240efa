package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/testutil"
)

func TestLedgerTamperDetectionPostgres(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	runLedgerTamperTests(t, "postgres")
}

func TestLedgerTamperDetectionMySQL(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	runLedgerTamperTests(t, "mysql")
}

// appendTestEvents writes count phi_access events through the event bus and
// returns the ledger size afterwards.
func appendTestEvents(t *testing.T, testCtx *integrationTestContext, count int) uint64 {
	t.Helper()
	ctx := context.Background()

	bus, err := testCtx.container.EventBus()
	require.NoError(t, err, "failed to get event bus")

	for i := 0; i < count; i++ {
		event := &auditDomain.AuditEvent{
			EventType:          auditDomain.EventTypePHIAccess,
			ActorID:            "clinician-1",
			ResourceType:       "patient_record",
			ResourceID:         "patient-5",
			Purpose:            "treatment",
			Outcome:            auditDomain.OutcomeAttempted,
			DataClassification: "phi",
		}
		_, err := bus.Publish(ctx, event)
		require.NoError(t, err, "failed to publish audit event")
	}

	ledger, err := testCtx.container.Ledger()
	require.NoError(t, err, "failed to get ledger")

	size, err := ledger.Count(ctx)
	require.NoError(t, err, "failed to count ledger entries")
	return size
}

func runLedgerTamperTests(t *testing.T, dbDriver string) {
	testCtx := setupIntegrationTest(t, dbDriver)
	ctx := context.Background()

	size := appendTestEvents(t, testCtx, 5)
	require.GreaterOrEqual(t, size, uint64(5))

	verifier, err := testCtx.container.Verifier()
	require.NoError(t, err, "failed to get verifier")

	t.Run("intact-chain-verifies", func(t *testing.T) {
		report, err := verifier.Verify(ctx, 0, size)
		require.NoError(t, err)
		assert.True(t, report.OK)
		assert.Equal(t, size, report.CheckedCount)
	})

	t.Run("mutated-row-is-flagged-at-its-index", func(t *testing.T) {
		// Mutate the third entry directly in the database. Database positions
		// are 1-based, report indexes are 0-based.
		var query string
		if dbDriver == "postgres" {
			query = "UPDATE audit_events SET actor_id = 'mallory' WHERE position = $1"
		} else {
			query = "UPDATE audit_events SET actor_id = 'mallory' WHERE position = ?"
		}
		_, err := testCtx.db.ExecContext(ctx, query, 3)
		require.NoError(t, err, "failed to tamper with audit event")

		report, err := verifier.Verify(ctx, 0, size)
		require.NoError(t, err)
		assert.False(t, report.OK)
		require.NotNil(t, report.FirstBadIndex)
		assert.Equal(t, uint64(2), *report.FirstBadIndex)
	})

	t.Run("divergence-is-recorded-as-security-violation", func(t *testing.T) {
		ledger, err := testCtx.container.Ledger()
		require.NoError(t, err)

		newSize, err := ledger.Count(ctx)
		require.NoError(t, err)
		require.Greater(t, newSize, size, "expected a violation event appended to the ledger")

		var tail *auditDomain.AuditEvent
		for event, err := range ledger.ReadRange(ctx, newSize-1, newSize) {
			require.NoError(t, err)
			tail = event
		}
		require.NotNil(t, tail)
		assert.Equal(t, auditDomain.EventTypeSecurityViolation, tail.EventType)
		assert.Equal(t, "integrity-verifier", tail.ActorID)
		assert.Equal(t, float64(2), tail.Details["first_bad_index"])
	})

	t.Run("violation-entry-is-itself-correctly-chained", func(t *testing.T) {
		// Verification over only the entries appended after the tampered one
		// still passes: the chain keeps accumulating evidence past the damage.
		ledger, err := testCtx.container.Ledger()
		require.NoError(t, err)

		newSize, err := ledger.Count(ctx)
		require.NoError(t, err)

		report, err := ledger.VerifyChain(ctx, 3, newSize)
		require.NoError(t, err)
		assert.True(t, report.OK)
	})

	t.Run("verify-endpoint-reports-divergence", func(t *testing.T) {
		resp, body := testCtx.makeRequest(t, http.MethodGet, "/v1/ledger/verify?start=0&end=5", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"ok":false`)
		assert.Contains(t, string(body), `"first_bad_index":2`)
	})
}
