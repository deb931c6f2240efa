package domain

// IntegrityReport is the result of verifying a ledger range.
//
// Indexes are zero-based ledger positions. Verification stops at the first
// divergence: everything before FirstBadIndex is known good, everything from
// it on is unverified.
type IntegrityReport struct {
	OK            bool
	Start         uint64
	End           uint64
	CheckedCount  uint64
	FirstBadIndex *uint64
}

// NewIntegrityReport returns a report for a fully verified range.
func NewIntegrityReport(start, end, checked uint64) *IntegrityReport {
	return &IntegrityReport{
		OK:           true,
		Start:        start,
		End:          end,
		CheckedCount: checked,
	}
}

// NewBrokenIntegrityReport returns a report for a range whose chain diverges
// at firstBad.
func NewBrokenIntegrityReport(start, end, checked, firstBad uint64) *IntegrityReport {
	return &IntegrityReport{
		OK:            false,
		Start:         start,
		End:           end,
		CheckedCount:  checked,
		FirstBadIndex: &firstBad,
	}
}
