package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	auditMocks "github.com/caretrail/phicore/internal/audit/usecase/mocks"
)

func TestRunVerifyLedger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	report := auditDomain.NewIntegrityReport(0, 10, 10)

	t.Run("success-text", func(t *testing.T) {
		mockVerifier := &auditMocks.MockVerifier{}
		mockVerifier.On("Verify", ctx, uint64(0), uint64(10)).Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyLedger(ctx, mockVerifier, logger, &out, "0", "10", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Ledger Integrity Verification")
		require.Contains(t, out.String(), "Status: PASSED")
		mockVerifier.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		mockVerifier := &auditMocks.MockVerifier{}
		mockVerifier.On("Verify", ctx, uint64(0), uint64(10)).Return(report, nil)

		var out bytes.Buffer
		err := RunVerifyLedger(ctx, mockVerifier, logger, &out, "0", "10", "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, float64(10), result["checked_count"])
		require.Equal(t, true, result["passed"])
		mockVerifier.AssertExpectations(t)
	})

	t.Run("invalid-positions", func(t *testing.T) {
		err := RunVerifyLedger(ctx, nil, logger, nil, "invalid", "10", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid start position")
	})

	t.Run("empty-range", func(t *testing.T) {
		err := RunVerifyLedger(ctx, nil, logger, nil, "10", "10", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "end position must be greater than start position")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		mockVerifier := &auditMocks.MockVerifier{}
		brokenReport := auditDomain.NewBrokenIntegrityReport(0, 10, 3, 3)
		mockVerifier.On("Verify", ctx, uint64(0), uint64(10)).Return(brokenReport, nil)

		var out bytes.Buffer
		err := RunVerifyLedger(ctx, mockVerifier, logger, &out, "0", "10", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "integrity check failed")
		require.Contains(t, out.String(), "WARNING: chain diverges at index 3!")
		mockVerifier.AssertExpectations(t)
	})
}
