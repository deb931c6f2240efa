package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// LoadMasterKeyChain loads the master key chain, unwrapping key material
// through the KMS keeper when a key URI is configured.
//
// With an empty keyURI the MASTER_KEYS entries are treated as raw base64 key
// material (development mode) and loading is delegated to
// domain.LoadMasterKeyChainFromEnv. With a keyURI, each entry's value is a
// base64 KMS ciphertext produced by the create-master-key command; every
// entry is decrypted through the keeper before being installed. Fails fast on
// any invalid entry so the service never starts with a partial keychain.
func LoadMasterKeyChain(
	ctx context.Context,
	kms KMSService,
	keyURI string,
	logger *slog.Logger,
) (*cryptoDomain.MasterKeyChain, error) {
	if keyURI == "" {
		logger.Warn("loading master keys without KMS; use a KMS provider in production")
		return cryptoDomain.LoadMasterKeyChainFromEnv()
	}

	raw := os.Getenv("MASTER_KEYS")
	if raw == "" {
		return nil, cryptoDomain.ErrMasterKeysNotSet
	}

	active := os.Getenv("ACTIVE_MASTER_KEY_ID")
	if active == "" {
		return nil, cryptoDomain.ErrActiveMasterKeyIDNotSet
	}

	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	entries := map[string][]byte{}
	defer func() {
		for _, key := range entries {
			cryptoDomain.Zero(key)
		}
	}()

	for part := range strings.SplitSeq(raw, ",") {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrInvalidMasterKeysFormat, part)
		}
		id := p[0]

		ciphertext, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %v", cryptoDomain.ErrInvalidMasterKeyBase64, id, err)
		}

		key, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt master key %s with KMS: %w", id, err)
		}
		if len(key) != 32 {
			cryptoDomain.Zero(key)
			return nil, fmt.Errorf(
				"%w: master key %s must be 32 bytes, got %d",
				cryptoDomain.ErrInvalidKeySize, id, len(key),
			)
		}

		entries[id] = key
	}

	if _, ok := entries[active]; !ok {
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", cryptoDomain.ErrActiveMasterKeyNotFound, active)
	}

	mkc := cryptoDomain.NewMasterKeyChain(active, entries)

	logger.Info("master key chain loaded via KMS",
		slog.Int("keys", len(entries)),
		slog.String("active_master_key_id", active),
	)

	return mkc, nil
}
