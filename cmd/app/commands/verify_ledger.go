package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	auditUseCase "github.com/caretrail/phicore/internal/audit/usecase"
)

// RunVerifyLedger verifies the hash chain of the audit ledger over [start, end).
// Recomputes each entry's hash from its predecessor and flags the first position
// where the stored chain diverges. A divergence is also recorded in the ledger
// itself as a security_violation event.
//
// Requirements: Database must be migrated and accessible.
func RunVerifyLedger(
	ctx context.Context,
	verifier auditUseCase.Verifier,
	logger *slog.Logger,
	writer io.Writer,
	startStr, endStr string,
	format string,
) error {
	// Parse position strings to ledger indexes
	start, err := parsePosition(startStr)
	if err != nil {
		return fmt.Errorf("invalid start position: %w", err)
	}

	end, err := parsePosition(endStr)
	if err != nil {
		return fmt.Errorf("invalid end position: %w", err)
	}

	// Validate range
	if end <= start {
		return fmt.Errorf("end position must be greater than start position")
	}

	logger.Info("verifying audit ledger",
		slog.Uint64("start", start),
		slog.Uint64("end", end),
	)

	// Execute chain verification
	report, err := verifier.Verify(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit ledger: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report)
	}

	// Log summary
	logger.Info("verification completed",
		slog.Uint64("checked_count", report.CheckedCount),
		slog.Bool("ok", report.OK),
	)

	// Exit with error code if integrity check failed
	if !report.OK {
		return fmt.Errorf("integrity check failed: chain diverges at index %d", *report.FirstBadIndex)
	}

	return nil
}

// parsePosition parses a zero-based ledger position.
func parsePosition(positionStr string) (uint64, error) {
	position, err := strconv.ParseUint(positionStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid position (expected a non-negative integer): %s", positionStr)
	}
	return position, nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, report *auditDomain.IntegrityReport) {
	_, _ = fmt.Fprintf(writer, "Audit Ledger Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "====================================\n\n")
	_, _ = fmt.Fprintf(writer, "Range:          [%d, %d)\n", report.Start, report.End)
	_, _ = fmt.Fprintf(writer, "Checked:        %d\n\n", report.CheckedCount)

	switch {
	case !report.OK:
		_, _ = fmt.Fprintf(writer, "WARNING: chain diverges at index %d!\n", *report.FirstBadIndex)
		_, _ = fmt.Fprintf(writer, "Entries before index %d are verified, entries from it on are unverified.\n\n", *report.FirstBadIndex)
		_, _ = fmt.Fprintf(writer, "Status: FAILED\n")
	case report.CheckedCount == 0:
		_, _ = fmt.Fprintf(writer, "Status: No entries found in specified range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// outputVerifyJSON outputs the verification result in JSON format for machine consumption.
func outputVerifyJSON(writer io.Writer, report *auditDomain.IntegrityReport) error {
	result := map[string]interface{}{
		"start":         report.Start,
		"end":           report.End,
		"checked_count": report.CheckedCount,
		"passed":        report.OK,
	}
	if report.FirstBadIndex != nil {
		result["first_bad_index"] = *report.FirstBadIndex
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
