package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	cryptoService "github.com/caretrail/phicore/internal/crypto/service"
	"github.com/caretrail/phicore/internal/database"
)

// keyUseCase implements KeyProvider.
//
// Unwrapped keys are cached in a KeyChain so the database is only touched on
// cache misses and rotations. Concurrent misses for the same key collapse
// into a single repository round trip via singleflight.
type keyUseCase struct {
	txManager  database.TxManager
	keyRepo    KeyRepository
	keyWrapper cryptoService.KeyWrapper
	defaultAlg cryptoDomain.Algorithm
	chain      *cryptoDomain.KeyChain
	group      singleflight.Group
}

// unwrap populates the plaintext key material on a wrapped key using the
// master key that wraps it.
func (k *keyUseCase) unwrap(
	key *cryptoDomain.KeyContext,
	masterKeyChain *cryptoDomain.MasterKeyChain,
) error {
	masterKey, ok := masterKeyChain.Get(key.MasterKeyID)
	if !ok {
		return cryptoDomain.ErrMasterKeyNotFound
	}

	plaintext, err := k.keyWrapper.UnwrapDataKey(key, masterKey)
	if err != nil {
		return err
	}

	key.Key = plaintext
	return nil
}

// ResolveActive returns the active data key for a context, creating the
// first key lazily when the context has never been used.
func (k *keyUseCase) ResolveActive(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
) (*cryptoDomain.KeyContext, error) {
	if keyID, ok := k.chain.ActiveKeyID(contextID); ok {
		if key, ok := k.chain.Get(keyID); ok {
			return key, nil
		}
	}

	result, err, _ := k.group.Do("active:"+contextID, func() (any, error) {
		key, err := k.keyRepo.GetActive(ctx, contextID)
		if errors.Is(err, cryptoDomain.ErrKeyContextNotFound) {
			// First use of this context: provision version 1.
			return k.rotate(ctx, masterKeyChain, contextID, k.defaultAlg)
		}
		if err != nil {
			return nil, err
		}

		if err := k.unwrap(key, masterKeyChain); err != nil {
			return nil, err
		}

		k.chain.Put(key)
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*cryptoDomain.KeyContext), nil
}

// ResolveByID returns the data key an envelope names, active or retired.
func (k *keyUseCase) ResolveByID(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	keyID uuid.UUID,
) (*cryptoDomain.KeyContext, error) {
	if key, ok := k.chain.Get(keyID); ok {
		return key, nil
	}

	result, err, _ := k.group.Do("id:"+keyID.String(), func() (any, error) {
		key, err := k.keyRepo.GetByID(ctx, keyID)
		if err != nil {
			return nil, err
		}

		if err := k.unwrap(key, masterKeyChain); err != nil {
			return nil, err
		}

		k.chain.Put(key)
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*cryptoDomain.KeyContext), nil
}

// Rotate retires the current active key for a context and creates its
// successor atomically.
func (k *keyUseCase) Rotate(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.KeyContext, error) {
	return k.rotate(ctx, masterKeyChain, contextID, alg)
}

// rotate performs the rotation transaction: retire the active key if one
// exists, then create the next version. On first use of a context it creates
// version 1 without retiring anything.
func (k *keyUseCase) rotate(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.KeyContext, error) {
	masterKey, ok := masterKeyChain.Get(masterKeyChain.ActiveMasterKeyID())
	if !ok {
		return nil, cryptoDomain.ErrMasterKeyNotFound
	}

	var newKey *cryptoDomain.KeyContext
	var retiredKeyID *uuid.UUID

	err := k.txManager.WithTx(ctx, func(ctx context.Context) error {
		version := uint(1)

		current, err := k.keyRepo.GetActive(ctx, contextID)
		switch {
		case err == nil:
			version = current.Version + 1
			if err := k.keyRepo.Retire(ctx, current.KeyID); err != nil {
				return err
			}
			retiredKeyID = &current.KeyID
		case errors.Is(err, cryptoDomain.ErrKeyContextNotFound):
			// No active key yet: this rotation creates version 1.
		default:
			return err
		}

		key, err := k.keyWrapper.CreateDataKey(masterKey, contextID, alg, version)
		if err != nil {
			return err
		}

		if err := k.keyRepo.Create(ctx, key); err != nil {
			return err
		}

		newKey = key
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Update the cache only after the transaction committed.
	if retiredKeyID != nil {
		k.chain.Retire(*retiredKeyID)
	}
	k.chain.Put(newKey)

	return newKey, nil
}

// Close clears all cached plaintext key material.
func (k *keyUseCase) Close() {
	k.chain.Close()
}

// NewKeyUseCase creates a new KeyProvider backed by the given repository and
// key wrapper. The default algorithm is used for keys provisioned lazily on
// first use of a context.
func NewKeyUseCase(
	txManager database.TxManager,
	keyRepo KeyRepository,
	keyWrapper cryptoService.KeyWrapper,
	defaultAlg cryptoDomain.Algorithm,
) KeyProvider {
	return &keyUseCase{
		txManager:  txManager,
		keyRepo:    keyRepo,
		keyWrapper: keyWrapper,
		defaultAlg: defaultAlg,
		chain:      cryptoDomain.NewKeyChain(),
	}
}
