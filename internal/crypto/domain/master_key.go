package domain

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"

	apperrors "github.com/caretrail/phicore/internal/errors"
)

// Master key loading errors.
var (
	ErrMasterKeysNotSet        = apperrors.New("MASTER_KEYS not set")
	ErrActiveMasterKeyIDNotSet = apperrors.New("ACTIVE_MASTER_KEY_ID not set")
	ErrInvalidMasterKeysFormat = apperrors.New("invalid MASTER_KEYS format, expected id:base64key")
	ErrInvalidMasterKeyBase64  = apperrors.New("invalid master key base64 encoding")
	ErrActiveMasterKeyNotFound = apperrors.New("active master key not found in keychain")
)

// MasterKey is the root of the envelope hierarchy: it wraps the per-context
// data keys that in turn encrypt PHI field values.
//
// Master key material is supplied by the deployment environment, either
// directly (development) or unwrapped through a KMS keeper at startup
// (production). It is never persisted by this service.
type MasterKey struct {
	ID  string
	Key []byte
}

// MasterKeyChain manages a collection of master keys with one designated as
// active. Old master keys remain available to unwrap existing data keys while
// new data keys are wrapped with the active key.
//
// Thread safety: uses sync.Map internally for concurrent access.
type MasterKeyChain struct {
	activeID string
	keys     sync.Map
}

// ActiveMasterKeyID returns the ID of the currently active master key,
// used to wrap newly created data keys.
func (m *MasterKeyChain) ActiveMasterKeyID() string {
	return m.activeID
}

// Get retrieves a master key from the keychain by its ID. Needed when
// unwrapping data keys that were wrapped under a previous master key.
func (m *MasterKeyChain) Get(id string) (*MasterKey, bool) {
	if masterKey, ok := m.keys.Load(id); ok {
		return masterKey.(*MasterKey), ok
	}
	return nil, false
}

// Close securely clears all master keys from memory and resets the keychain.
func (m *MasterKeyChain) Close() {
	m.keys.Range(func(_, value any) bool {
		if masterKey, ok := value.(*MasterKey); ok {
			Zero(masterKey.Key)
		}
		return true
	})
	m.activeID = ""
	m.keys.Clear()
}

// NewMasterKeyChain builds a keychain from already-unwrapped key material.
// Key bytes are copied, so callers may zero their buffers after the call.
// The caller is responsible for ensuring activeID exists in entries.
func NewMasterKeyChain(activeID string, entries map[string][]byte) *MasterKeyChain {
	mkc := &MasterKeyChain{activeID: activeID}
	for id, key := range entries {
		keyCopy := make([]byte, len(key))
		copy(keyCopy, key)
		mkc.keys.Store(id, &MasterKey{ID: id, Key: keyCopy})
	}
	return mkc
}

// LoadMasterKeyChainFromEnv loads master keys from environment variables.
//
// Expected format:
//
//	MASTER_KEYS="key1:<base64 32 bytes>,key2:<base64 32 bytes>"
//	ACTIVE_MASTER_KEY_ID="key2"
//
// Each key must decode to exactly 32 bytes. Temporary decoded buffers are
// zeroed after the key is copied into the keychain; on any error the
// keychain is closed to prevent partial initialization.
func LoadMasterKeyChainFromEnv() (*MasterKeyChain, error) {
	raw := os.Getenv("MASTER_KEYS")
	if raw == "" {
		return nil, ErrMasterKeysNotSet
	}

	active := os.Getenv("ACTIVE_MASTER_KEY_ID")
	if active == "" {
		return nil, ErrActiveMasterKeyIDNotSet
	}

	mkc := &MasterKeyChain{activeID: active}

	parts := strings.SplitSeq(raw, ",")
	for part := range parts {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			mkc.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidMasterKeysFormat, part)
		}
		id := p[0]
		decoded, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			mkc.Close()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
		}
		if len(decoded) != 32 {
			Zero(decoded)
			mkc.Close()
			return nil, fmt.Errorf(
				"%w: master key %s must be 32 bytes, got %d",
				ErrInvalidKeySize,
				id,
				len(decoded),
			)
		}

		key := make([]byte, 32)
		copy(key, decoded)
		Zero(decoded)

		mkc.keys.Store(id, &MasterKey{ID: id, Key: key})
	}

	if _, ok := mkc.Get(active); !ok {
		mkc.Close()
		return nil, fmt.Errorf("%w: ACTIVE_MASTER_KEY_ID=%s", ErrActiveMasterKeyNotFound, active)
	}

	return mkc, nil
}
