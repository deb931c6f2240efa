package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	cryptoHTTP "github.com/caretrail/phicore/internal/crypto/http"
	cryptoRepository "github.com/caretrail/phicore/internal/crypto/repository"
	cryptoService "github.com/caretrail/phicore/internal/crypto/service"
	cryptoUseCase "github.com/caretrail/phicore/internal/crypto/usecase"
)

// MasterKeyChain returns the master key chain loaded from environment variables,
// unwrapped through the KMS keeper when one is configured.
func (c *Container) MasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	var err error
	c.masterKeyChainInit.Do(func() {
		c.masterKeyChain, err = c.initMasterKeyChain()
		if err != nil {
			c.initErrors["masterKeyChain"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKeyChain"]; exists {
		return nil, storedErr
	}
	return c.masterKeyChain, nil
}

// KMSService returns the KMS service used to unwrap master key material.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyWrapper returns the data key wrapping service.
func (c *Container) KeyWrapper() cryptoService.KeyWrapper {
	c.keyWrapperInit.Do(func() {
		c.keyWrapper = cryptoService.NewKeyWrapper(c.AEADManager())
	})
	return c.keyWrapper
}

// Envelope returns the field envelope encryption service.
func (c *Container) Envelope() cryptoService.Envelope {
	c.envelopeInit.Do(func() {
		c.envelope = cryptoService.NewEnvelopeService(c.AEADManager())
	})
	return c.envelope
}

// KeyRepository returns the data key repository based on the database driver.
func (c *Container) KeyRepository() (cryptoUseCase.KeyRepository, error) {
	var err error
	c.keyRepoInit.Do(func() {
		c.keyRepo, err = c.initKeyRepository()
		if err != nil {
			c.initErrors["keyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyRepo"]; exists {
		return nil, storedErr
	}
	return c.keyRepo, nil
}

// KeyProvider returns the data key provider.
func (c *Container) KeyProvider() (cryptoUseCase.KeyProvider, error) {
	var err error
	c.keyProviderInit.Do(func() {
		c.keyProvider, err = c.initKeyProvider()
		if err != nil {
			c.initErrors["keyProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyProvider"]; exists {
		return nil, storedErr
	}
	return c.keyProvider, nil
}

// FieldUseCase returns the PHI field protection use case.
func (c *Container) FieldUseCase() (cryptoUseCase.FieldUseCase, error) {
	var err error
	c.fieldUseCaseInit.Do(func() {
		c.fieldUseCase, err = c.initFieldUseCase()
		if err != nil {
			c.initErrors["fieldUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldUseCase"]; exists {
		return nil, storedErr
	}
	return c.fieldUseCase, nil
}

// FieldHandler creates the PHI field HTTP handler with all its dependencies.
func (c *Container) FieldHandler() (*cryptoHTTP.FieldHandler, error) {
	fieldUseCase, err := c.FieldUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get field use case for field handler: %w", err)
	}

	masterKeyChain, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for field handler: %w", err)
	}

	return cryptoHTTP.NewFieldHandler(fieldUseCase, masterKeyChain, c.Logger()), nil
}

// KeyHandler creates the data key HTTP handler with all its dependencies.
func (c *Container) KeyHandler() (*cryptoHTTP.KeyHandler, error) {
	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for key handler: %w", err)
	}

	masterKeyChain, err := c.MasterKeyChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key chain for key handler: %w", err)
	}

	return cryptoHTTP.NewKeyHandler(keyProvider, masterKeyChain, c.Logger()), nil
}

// initMasterKeyChain loads the master key chain with fail-fast validation.
func (c *Container) initMasterKeyChain() (*cryptoDomain.MasterKeyChain, error) {
	masterKeyChain, err := cryptoService.LoadMasterKeyChain(
		context.Background(),
		c.KMSService(),
		c.config.KMSKeyURI,
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key chain: %w", err)
	}
	return masterKeyChain, nil
}

// initKeyRepository creates the data key repository based on the database driver.
func (c *Container) initKeyRepository() (cryptoUseCase.KeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLKeyRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyProvider creates the key provider with all its dependencies.
func (c *Container) initKeyProvider() (cryptoUseCase.KeyProvider, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key provider: %w", err)
	}

	keyRepo, err := c.KeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key repository for key provider: %w", err)
	}

	baseProvider := cryptoUseCase.NewKeyUseCase(
		txManager,
		keyRepo,
		c.KeyWrapper(),
		cryptoDomain.AESGCM,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key provider: %w", err)
		}
		return cryptoUseCase.NewKeyProviderWithMetrics(baseProvider, businessMetrics), nil
	}

	return baseProvider, nil
}

// initFieldUseCase creates the field use case with all its dependencies.
func (c *Container) initFieldUseCase() (cryptoUseCase.FieldUseCase, error) {
	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for field use case: %w", err)
	}

	eventBus, err := c.EventBus()
	if err != nil {
		return nil, fmt.Errorf("failed to get event bus for field use case: %w", err)
	}

	baseUseCase := cryptoUseCase.NewFieldUseCase(keyProvider, c.Envelope(), eventBus)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for field use case: %w", err)
		}
		return cryptoUseCase.NewFieldUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
