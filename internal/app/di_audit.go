package app

import (
	"fmt"

	auditHTTP "github.com/caretrail/phicore/internal/audit/http"
	auditRepository "github.com/caretrail/phicore/internal/audit/repository"
	auditUseCase "github.com/caretrail/phicore/internal/audit/usecase"
)

// LedgerRepository returns the audit ledger repository based on the database driver.
func (c *Container) LedgerRepository() (auditUseCase.LedgerRepository, error) {
	var err error
	c.ledgerRepoInit.Do(func() {
		c.ledgerRepo, err = c.initLedgerRepository()
		if err != nil {
			c.initErrors["ledgerRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ledgerRepo"]; exists {
		return nil, storedErr
	}
	return c.ledgerRepo, nil
}

// Ledger returns the append-only audit ledger use case.
func (c *Container) Ledger() (auditUseCase.Ledger, error) {
	var err error
	c.ledgerInit.Do(func() {
		c.ledger, err = c.initLedger()
		if err != nil {
			c.initErrors["ledger"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["ledger"]; exists {
		return nil, storedErr
	}
	return c.ledger, nil
}

// EventBus returns the durable audit event bus.
func (c *Container) EventBus() (auditUseCase.EventBus, error) {
	var err error
	c.eventBusInit.Do(func() {
		c.eventBus, err = c.initEventBus()
		if err != nil {
			c.initErrors["eventBus"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventBus"]; exists {
		return nil, storedErr
	}
	return c.eventBus, nil
}

// Verifier returns the ledger integrity verifier.
func (c *Container) Verifier() (auditUseCase.Verifier, error) {
	var err error
	c.verifierInit.Do(func() {
		c.verifier, err = c.initVerifier()
		if err != nil {
			c.initErrors["verifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verifier"]; exists {
		return nil, storedErr
	}
	return c.verifier, nil
}

// LedgerHandler creates the audit ledger HTTP handler with all its dependencies.
func (c *Container) LedgerHandler() (*auditHTTP.LedgerHandler, error) {
	ledger, err := c.Ledger()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for ledger handler: %w", err)
	}

	verifier, err := c.Verifier()
	if err != nil {
		return nil, fmt.Errorf("failed to get verifier for ledger handler: %w", err)
	}

	return auditHTTP.NewLedgerHandler(ledger, verifier, c.Logger()), nil
}

// initLedgerRepository creates the ledger repository based on the database driver.
func (c *Container) initLedgerRepository() (auditUseCase.LedgerRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ledger repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLLedgerRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLLedgerRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initLedger creates the ledger use case with all its dependencies.
func (c *Container) initLedger() (auditUseCase.Ledger, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for ledger: %w", err)
	}

	ledgerRepo, err := c.LedgerRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger repository for ledger: %w", err)
	}

	return auditUseCase.NewLedgerUseCase(txManager, ledgerRepo), nil
}

// initEventBus creates the event bus with the configured retry settings.
func (c *Container) initEventBus() (auditUseCase.EventBus, error) {
	ledger, err := c.Ledger()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for event bus: %w", err)
	}

	baseBus := auditUseCase.NewEventBusWithConfig(auditUseCase.EventBusConfig{
		PublishAttempts: c.config.AuditPublishAttempts,
		PublishBackoff:  c.config.AuditPublishBackoff,
	}, ledger)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for event bus: %w", err)
		}
		return auditUseCase.NewEventBusWithMetrics(baseBus, businessMetrics), nil
	}

	return baseBus, nil
}

// initVerifier creates the integrity verifier with all its dependencies.
func (c *Container) initVerifier() (auditUseCase.Verifier, error) {
	ledger, err := c.Ledger()
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for verifier: %w", err)
	}

	eventBus, err := c.EventBus()
	if err != nil {
		return nil, fmt.Errorf("failed to get event bus for verifier: %w", err)
	}

	baseVerifier := auditUseCase.NewVerifier(ledger, eventBus)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for verifier: %w", err)
		}
		return auditUseCase.NewVerifierWithMetrics(baseVerifier, businessMetrics), nil
	}

	return baseVerifier, nil
}
