package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

const (
	defaultPublishAttempts = 3
	defaultPublishBackoff  = 50 * time.Millisecond
)

// EventBusConfig tunes the durability retry loop of the event bus.
type EventBusConfig struct {
	// PublishAttempts is how many times an append is tried before the bus
	// reports the audit trail as unavailable.
	PublishAttempts int
	// PublishBackoff is the base delay between attempts; the delay grows
	// linearly with the attempt number.
	PublishBackoff time.Duration
}

// eventBus serializes all ledger writes through a single mutex so events are
// chained in a deterministic order within the process. Publish never drops an
// event silently: it retries transient append failures and surfaces
// ErrAuditUnavailable when retries are exhausted.
type eventBus struct {
	mu       sync.Mutex
	ledger   Ledger
	attempts int
	backoff  time.Duration
}

// Publish appends the event and returns the stored entry with its position
// and hashes filled in. Once invoked, the append runs to completion even if
// the caller's context is cancelled mid-write: a half-published audit trail
// is worse than a slow response.
func (b *eventBus) Publish(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (*auditDomain.AuditEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= b.attempts; attempt++ {
		stored, err := b.ledger.Append(ctx, event)
		if err == nil {
			return stored, nil
		}
		lastErr = err

		// Invalid events never become appendable, so retrying is pointless.
		if errors.Is(err, auditDomain.ErrEventInvalid) {
			return nil, err
		}

		if attempt < b.attempts {
			time.Sleep(b.backoff * time.Duration(attempt))
		}
	}

	return nil, errors.Join(auditDomain.ErrAuditUnavailable, lastErr)
}

// NewEventBus creates a new EventBus writing to the given ledger with the
// default retry settings.
func NewEventBus(ledger Ledger) EventBus {
	return NewEventBusWithConfig(EventBusConfig{}, ledger)
}

// NewEventBusWithConfig creates a new EventBus with explicit retry settings.
// Zero values fall back to the defaults.
func NewEventBusWithConfig(cfg EventBusConfig, ledger Ledger) EventBus {
	if cfg.PublishAttempts <= 0 {
		cfg.PublishAttempts = defaultPublishAttempts
	}
	if cfg.PublishBackoff <= 0 {
		cfg.PublishBackoff = defaultPublishBackoff
	}

	return &eventBus{
		ledger:   ledger,
		attempts: cfg.PublishAttempts,
		backoff:  cfg.PublishBackoff,
	}
}
