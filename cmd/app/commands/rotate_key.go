package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	cryptoUseCase "github.com/caretrail/phicore/internal/crypto/usecase"
)

// RunRotateKey rotates the active data key for a key context using the specified
// algorithm. Retires the current active key and creates a new active key with an
// incremented version, atomically. Envelopes sealed under the retired key remain
// decryptable, re-encryption happens lazily on the next write.
//
// Key rotation recommended every 90 days or when suspecting key compromise,
// changing encryption algorithms, or rotating master keys.
//
// Requirements: MASTER_KEYS and ACTIVE_MASTER_KEY_ID must be set.
func RunRotateKey(
	ctx context.Context,
	keyProvider cryptoUseCase.KeyProvider,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	logger *slog.Logger,
	contextID, algorithmStr string,
) error {
	if contextID == "" {
		return fmt.Errorf("--context is required")
	}

	// Parse algorithm
	algorithm, err := parseAlgorithm(algorithmStr)
	if err != nil {
		return err
	}

	logger.Info("rotating data key",
		slog.String("context_id", contextID),
		slog.String("algorithm", string(algorithm)),
		slog.String("active_master_key_id", masterKeyChain.ActiveMasterKeyID()),
	)

	// Rotate the data key
	key, err := keyProvider.Rotate(ctx, masterKeyChain, contextID, algorithm)
	if err != nil {
		return fmt.Errorf("failed to rotate data key: %w", err)
	}

	logger.Info("data key rotated successfully",
		slog.String("key_id", key.KeyID.String()),
		slog.String("context_id", key.ContextID),
		slog.Uint64("version", uint64(key.Version)),
		slog.String("algorithm", string(key.Algorithm)),
	)

	return nil
}
