package usecase

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	cryptoService "github.com/caretrail/phicore/internal/crypto/service"
	usecaseMocks "github.com/caretrail/phicore/internal/crypto/usecase/mocks"
	databaseMocks "github.com/caretrail/phicore/internal/database/mocks"
)

func newTestMasterKeyChain(t *testing.T) *cryptoDomain.MasterKeyChain {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	return cryptoDomain.NewMasterKeyChain("mk-1", map[string][]byte{"mk-1": key})
}

// asStored strips the plaintext key material, simulating the form a key has
// when read back from the repository.
func asStored(key *cryptoDomain.KeyContext) *cryptoDomain.KeyContext {
	stored := *key
	stored.Key = nil
	return &stored
}

func TestKeyUseCase_ResolveActive(t *testing.T) {
	ctx := context.Background()
	keyWrapper := cryptoService.NewKeyWrapper(cryptoService.NewAEADManager())

	t.Run("Success_CacheMissThenHit", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		masterKey, _ := masterKeyChain.Get("mk-1")
		created, err := keyWrapper.CreateDataKey(masterKey, "clinical", cryptoDomain.AESGCM, 1)
		require.NoError(t, err)

		mockTxManager := &databaseMocks.MockTxManager{}
		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetActive", ctx, "clinical").Return(asStored(created), nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		// First resolution unwraps and caches
		key, err := uc.ResolveActive(ctx, masterKeyChain, "clinical")
		require.NoError(t, err)
		assert.Equal(t, created.KeyID, key.KeyID)
		assert.Equal(t, created.Key, key.Key, "unwrap should recover the original data key")

		// Second resolution is served from the cache; Once() enforces a
		// single repository call
		cached, err := uc.ResolveActive(ctx, masterKeyChain, "clinical")
		require.NoError(t, err)
		assert.Same(t, key, cached)

		mockKeyRepo.AssertExpectations(t)
	})

	t.Run("Success_LazyProvisionOnFirstUse", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		mockTxManager := &databaseMocks.MockTxManager{}
		mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil)

		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		// Miss outside the transaction, miss again inside it
		mockKeyRepo.On("GetActive", ctx, "clinical").
			Return(nil, cryptoDomain.ErrKeyContextNotFound).Twice()
		mockKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *cryptoDomain.KeyContext) bool {
			return key.ContextID == "clinical" && key.Version == 1 && key.Active()
		})).Return(nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		key, err := uc.ResolveActive(ctx, masterKeyChain, "clinical")
		require.NoError(t, err)
		assert.Equal(t, uint(1), key.Version)
		assert.Equal(t, cryptoDomain.AESGCM, key.Algorithm)
		assert.NotNil(t, key.Key)

		mockKeyRepo.AssertExpectations(t)
		mockTxManager.AssertExpectations(t)
	})

	t.Run("Error_MasterKeyMissing", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		masterKey, _ := masterKeyChain.Get("mk-1")
		created, err := keyWrapper.CreateDataKey(masterKey, "clinical", cryptoDomain.AESGCM, 1)
		require.NoError(t, err)

		stored := asStored(created)
		stored.MasterKeyID = "mk-unknown"

		mockTxManager := &databaseMocks.MockTxManager{}
		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetActive", ctx, "clinical").Return(stored, nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		key, err := uc.ResolveActive(ctx, masterKeyChain, "clinical")
		assert.Nil(t, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotFound)
	})

	t.Run("Error_WrongMasterKeyMaterial", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		// Wrap under a different master key that shares the id "mk-1"
		otherKey := make([]byte, 32)
		_, err := rand.Read(otherKey)
		require.NoError(t, err)
		otherChain := cryptoDomain.NewMasterKeyChain("mk-1", map[string][]byte{"mk-1": otherKey})
		defer otherChain.Close()

		otherMaster, _ := otherChain.Get("mk-1")
		created, err := keyWrapper.CreateDataKey(otherMaster, "clinical", cryptoDomain.AESGCM, 1)
		require.NoError(t, err)

		mockTxManager := &databaseMocks.MockTxManager{}
		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetActive", ctx, "clinical").Return(asStored(created), nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		key, err := uc.ResolveActive(ctx, masterKeyChain, "clinical")
		assert.Nil(t, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityCheckFailed)
	})
}

func TestKeyUseCase_ResolveByID(t *testing.T) {
	ctx := context.Background()
	keyWrapper := cryptoService.NewKeyWrapper(cryptoService.NewAEADManager())

	t.Run("Success_RetiredKeyResolvable", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		masterKey, _ := masterKeyChain.Get("mk-1")
		created, err := keyWrapper.CreateDataKey(masterKey, "clinical", cryptoDomain.AESGCM, 1)
		require.NoError(t, err)

		stored := asStored(created)
		stored.Status = cryptoDomain.KeyStatusRetired

		mockTxManager := &databaseMocks.MockTxManager{}
		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetByID", ctx, created.KeyID).Return(stored, nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		key, err := uc.ResolveByID(ctx, masterKeyChain, created.KeyID)
		require.NoError(t, err)
		assert.Equal(t, created.Key, key.Key)
		assert.Equal(t, cryptoDomain.KeyStatusRetired, key.Status)

		// Cached now; no further repository calls
		cached, err := uc.ResolveByID(ctx, masterKeyChain, created.KeyID)
		require.NoError(t, err)
		assert.Same(t, key, cached)

		mockKeyRepo.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		keyID := uuid.Must(uuid.NewV7())

		mockTxManager := &databaseMocks.MockTxManager{}
		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetByID", ctx, keyID).Return(nil, cryptoDomain.ErrKeyNotFound).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		key, err := uc.ResolveByID(ctx, masterKeyChain, keyID)
		assert.Nil(t, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyNotFound)
	})
}

func TestKeyUseCase_Rotate(t *testing.T) {
	ctx := context.Background()
	keyWrapper := cryptoService.NewKeyWrapper(cryptoService.NewAEADManager())

	t.Run("Success_RetiresCurrentAndCreatesSuccessor", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		masterKey, _ := masterKeyChain.Get("mk-1")
		current, err := keyWrapper.CreateDataKey(masterKey, "identifiers", cryptoDomain.AESGCM, 3)
		require.NoError(t, err)

		mockTxManager := &databaseMocks.MockTxManager{}
		mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil)

		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetActive", ctx, "identifiers").Return(asStored(current), nil).Once()
		mockKeyRepo.On("Retire", ctx, current.KeyID).Return(nil).Once()
		mockKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *cryptoDomain.KeyContext) bool {
			return key.ContextID == "identifiers" && key.Version == 4 && key.Active()
		})).Return(nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		newKey, err := uc.Rotate(ctx, masterKeyChain, "identifiers", cryptoDomain.ChaCha20)
		require.NoError(t, err)
		assert.Equal(t, uint(4), newKey.Version)
		assert.Equal(t, cryptoDomain.ChaCha20, newKey.Algorithm)
		assert.NotEqual(t, current.KeyID, newKey.KeyID)

		// After rotation the new key is the cached active key
		active, err := uc.ResolveActive(ctx, masterKeyChain, "identifiers")
		require.NoError(t, err)
		assert.Equal(t, newKey.KeyID, active.KeyID)

		mockKeyRepo.AssertExpectations(t)
		mockTxManager.AssertExpectations(t)
	})

	t.Run("Success_FirstKeyForContext", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		mockTxManager := &databaseMocks.MockTxManager{}
		mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil)

		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetActive", ctx, "contact").
			Return(nil, cryptoDomain.ErrKeyContextNotFound).Once()
		mockKeyRepo.On("Create", ctx, mock.MatchedBy(func(key *cryptoDomain.KeyContext) bool {
			return key.ContextID == "contact" && key.Version == 1
		})).Return(nil).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		newKey, err := uc.Rotate(ctx, masterKeyChain, "contact", cryptoDomain.AESGCM)
		require.NoError(t, err)
		assert.Equal(t, uint(1), newKey.Version)

		mockKeyRepo.AssertExpectations(t)
	})

	t.Run("Error_RetireFails", func(t *testing.T) {
		masterKeyChain := newTestMasterKeyChain(t)
		defer masterKeyChain.Close()

		masterKey, _ := masterKeyChain.Get("mk-1")
		current, err := keyWrapper.CreateDataKey(masterKey, "identifiers", cryptoDomain.AESGCM, 1)
		require.NoError(t, err)

		mockTxManager := &databaseMocks.MockTxManager{}
		mockTxManager.On("WithTx", ctx, mock.Anything).Return(nil)

		mockKeyRepo := &usecaseMocks.MockKeyRepository{}
		mockKeyRepo.On("GetActive", ctx, "identifiers").Return(asStored(current), nil).Once()
		mockKeyRepo.On("Retire", ctx, current.KeyID).Return(assert.AnError).Once()

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		newKey, err := uc.Rotate(ctx, masterKeyChain, "identifiers", cryptoDomain.AESGCM)
		assert.Nil(t, newKey)
		assert.ErrorIs(t, err, assert.AnError)

		mockKeyRepo.AssertExpectations(t)
	})

	t.Run("Error_ActiveMasterKeyMissing", func(t *testing.T) {
		// Chain whose active id points at a key that is not present
		masterKeyChain := cryptoDomain.NewMasterKeyChain("mk-missing", map[string][]byte{})
		defer masterKeyChain.Close()

		mockTxManager := &databaseMocks.MockTxManager{}
		mockKeyRepo := &usecaseMocks.MockKeyRepository{}

		uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)
		defer uc.Close()

		newKey, err := uc.Rotate(ctx, masterKeyChain, "identifiers", cryptoDomain.AESGCM)
		assert.Nil(t, newKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotFound)
	})
}

func TestKeyUseCase_Close(t *testing.T) {
	ctx := context.Background()
	keyWrapper := cryptoService.NewKeyWrapper(cryptoService.NewAEADManager())

	masterKeyChain := newTestMasterKeyChain(t)
	defer masterKeyChain.Close()

	masterKey, _ := masterKeyChain.Get("mk-1")
	created, err := keyWrapper.CreateDataKey(masterKey, "clinical", cryptoDomain.AESGCM, 1)
	require.NoError(t, err)

	mockTxManager := &databaseMocks.MockTxManager{}
	mockKeyRepo := &usecaseMocks.MockKeyRepository{}
	mockKeyRepo.On("GetActive", ctx, "clinical").Return(asStored(created), nil)

	uc := NewKeyUseCase(mockTxManager, mockKeyRepo, keyWrapper, cryptoDomain.AESGCM)

	key, err := uc.ResolveActive(ctx, masterKeyChain, "clinical")
	require.NoError(t, err)
	require.NotNil(t, key.Key)

	uc.Close()

	// Cached key material is wiped
	for _, b := range key.Key {
		assert.Equal(t, byte(0), b)
	}
}
