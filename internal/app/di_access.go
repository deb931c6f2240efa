package app

import (
	"fmt"

	accessHTTP "github.com/caretrail/phicore/internal/access/http"
	accessService "github.com/caretrail/phicore/internal/access/service"
	accessUseCase "github.com/caretrail/phicore/internal/access/usecase"
)

// RBACService returns the role-based access control policy service.
func (c *Container) RBACService() accessUseCase.RBACService {
	c.rbacServiceInit.Do(func() {
		c.rbacService = accessService.NewPolicyRBACService()
	})
	return c.rbacService
}

// Gate returns the audit-before-access gate use case.
func (c *Container) Gate() (accessUseCase.Gate, error) {
	var err error
	c.gateInit.Do(func() {
		c.gate, err = c.initGate()
		if err != nil {
			c.initErrors["gate"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gate"]; exists {
		return nil, storedErr
	}
	return c.gate, nil
}

// AccessHandler creates the access HTTP handler with all its dependencies.
func (c *Container) AccessHandler() (*accessHTTP.AccessHandler, error) {
	gate, err := c.Gate()
	if err != nil {
		return nil, fmt.Errorf("failed to get gate for access handler: %w", err)
	}

	return accessHTTP.NewAccessHandler(gate, c.Logger()), nil
}

// initGate creates the access gate with all its dependencies.
func (c *Container) initGate() (accessUseCase.Gate, error) {
	eventBus, err := c.EventBus()
	if err != nil {
		return nil, fmt.Errorf("failed to get event bus for gate: %w", err)
	}

	baseGate := accessUseCase.NewGateUseCase(c.RBACService(), eventBus)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for gate: %w", err)
		}
		return accessUseCase.NewGateWithMetrics(baseGate, businessMetrics), nil
	}

	return baseGate, nil
}
