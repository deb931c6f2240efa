package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/database"
	apperrors "github.com/caretrail/phicore/internal/errors"
)

// readBatchSize bounds how many events a range read loads per query.
const readBatchSize = 256

// ledgerUseCase implements Ledger on top of a LedgerRepository.
type ledgerUseCase struct {
	txManager database.TxManager
	repo      LedgerRepository
}

// Append stamps the event, links it to the current tail and persists it in a
// single transaction. The tail row is locked for the duration so concurrent
// appends serialize on the database even across processes.
func (l *ledgerUseCase) Append(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (*auditDomain.AuditEvent, error) {
	stamped := *event
	if stamped.EventID == uuid.Nil {
		stamped.EventID = uuid.Must(uuid.NewV7())
	}
	if stamped.Timestamp.IsZero() {
		stamped.Timestamp = time.Now().UTC()
	}
	stamped.Timestamp = stamped.Timestamp.Truncate(time.Microsecond)

	details, err := normalizeDetails(stamped.Details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to normalize audit event details")
	}
	stamped.Details = details

	if err := stamped.Validate(); err != nil {
		return nil, err
	}

	err = l.txManager.WithTx(ctx, func(ctx context.Context) error {
		tail, err := l.repo.GetTail(ctx)
		switch {
		case err == nil:
			stamped.PrevHash = tail.LogHash
		case errors.Is(err, auditDomain.ErrEventNotFound):
			stamped.PrevHash = auditDomain.GenesisHash
		default:
			return err
		}

		logHash, err := stamped.ComputeLogHash()
		if err != nil {
			return err
		}
		stamped.LogHash = logHash

		position, err := l.repo.Insert(ctx, &stamped)
		if err != nil {
			return err
		}

		stamped.Position = position
		return nil
	})
	if err != nil {
		return nil, errors.Join(auditDomain.ErrAuditWriteFailure, err)
	}

	return &stamped, nil
}

// ReadRange yields events with 0-based indexes in [start, end), end == 0
// meaning through the current tail. Events are fetched in batches as the
// caller iterates; iterating the returned sequence again restarts the read
// from the database.
func (l *ledgerUseCase) ReadRange(
	ctx context.Context,
	start, end uint64,
) iter.Seq2[*auditDomain.AuditEvent, error] {
	return func(yield func(*auditDomain.AuditEvent, error) bool) {
		endPos := end // positions are 1-based, so end index == last position
		if end == 0 {
			count, err := l.repo.Count(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			endPos = count
		}

		if start >= endPos {
			return
		}

		for batchStart := start + 1; batchStart <= endPos; batchStart += readBatchSize {
			batchEnd := min(batchStart+readBatchSize-1, endPos)

			events, err := l.repo.GetRange(ctx, batchStart, batchEnd)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, event := range events {
				if !yield(event, nil) {
					return
				}
			}

			// The ledger ends before the requested bound.
			if uint64(len(events)) < batchEnd-batchStart+1 {
				return
			}
		}
	}
}

// VerifyChain recomputes every log hash in [start, end) and checks each
// event's prev_hash linkage against its predecessor, stopping at the first
// divergent event and reporting its 0-based index. An end of 0 means through
// the current tail; the report carries the resolved bound.
func (l *ledgerUseCase) VerifyChain(
	ctx context.Context,
	start, end uint64,
) (*auditDomain.IntegrityReport, error) {
	if end == 0 {
		count, err := l.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		end = count
	}

	prevHash := auditDomain.GenesisHash
	if start > 0 {
		predecessors, err := l.repo.GetRange(ctx, start, start)
		if err != nil {
			return nil, err
		}
		if len(predecessors) == 0 {
			return nil, apperrors.Wrap(auditDomain.ErrInvalidRange, "start index beyond ledger tail")
		}
		prevHash = predecessors[0].LogHash
	}

	var checked uint64
	index := start
	if start < end {
		for event, err := range l.ReadRange(ctx, start, end) {
			if err != nil {
				return nil, err
			}

			valid, err := event.VerifyLogHash()
			if err != nil {
				return nil, err
			}
			if event.PrevHash != prevHash || !valid {
				return auditDomain.NewBrokenIntegrityReport(start, end, checked, index), nil
			}

			prevHash = event.LogHash
			checked++
			index++
		}
	}

	return auditDomain.NewIntegrityReport(start, end, checked), nil
}

// Count returns the number of events in the ledger.
func (l *ledgerUseCase) Count(ctx context.Context) (uint64, error) {
	return l.repo.Count(ctx)
}

// normalizeDetails round-trips details through JSON so the in-memory map used
// for hashing is byte-identical to what a later read from the database yields.
func normalizeDetails(details map[string]any) (map[string]any, error) {
	if details == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}

	var normalized map[string]any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, err
	}

	return normalized, nil
}

// NewLedgerUseCase creates a new Ledger backed by the given repository.
func NewLedgerUseCase(txManager database.TxManager, repo LedgerRepository) Ledger {
	return &ledgerUseCase{txManager: txManager, repo: repo}
}
