// Package domain defines the core cryptographic domain models for PHI field
// encryption.
//
// It implements a two-tier key hierarchy: Master Key → Data Key → Field Data.
// Each key context (a logical purpose such as "ssn" or a tenant scope) owns a
// set of 32-byte data keys wrapped by the master key. Rotation retires the
// current key and activates a new one without touching already-encrypted data;
// retired keys remain resolvable for decryption.
package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeyContext represents one data key within a key context.
// The wrapped key material is stored in the database; the plaintext key is
// populated after unwrapping and must never be persisted.
type KeyContext struct {
	KeyID       uuid.UUID // Unique key identifier (UUIDv7)
	ContextID   string    // Logical purpose/tenant this key encrypts for
	MasterKeyID string    // ID of the master key that wraps this data key
	Algorithm   Algorithm // AEAD algorithm this key is used with
	WrappedKey  []byte    // Data key encrypted with the master key
	Key         []byte    // Plaintext data key (populated after unwrap, never persisted)
	Nonce       []byte    // Nonce used when wrapping the data key
	Status      KeyStatus // active or retired
	Version     uint      // Monotonic version within the context
	CreatedAt   time.Time
	RetiredAt   *time.Time
}

// Active reports whether this key may be used for new encryption.
func (k *KeyContext) Active() bool {
	return k.Status == KeyStatusActive
}

// KeyChain caches unwrapped data keys with thread-safe access.
//
// Reads vastly outnumber writes: every encrypt/decrypt resolves a key, while
// writes happen only at rotation. Stale reads of a previous active key for a
// brief window are acceptable since retired keys remain valid for decryption.
type KeyChain struct {
	mu     sync.RWMutex
	active map[string]uuid.UUID // context id → active key id
	keys   sync.Map             // key id → *KeyContext
}

// NewKeyChain creates an empty KeyChain.
func NewKeyChain() *KeyChain {
	return &KeyChain{
		active: make(map[string]uuid.UUID),
	}
}

// ActiveKeyID returns the id of the active key for a context, if cached.
func (c *KeyChain) ActiveKeyID(contextID string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.active[contextID]
	return id, ok
}

// Get retrieves a cached key by its id.
func (c *KeyChain) Get(keyID uuid.UUID) (*KeyContext, bool) {
	if key, ok := c.keys.Load(keyID); ok {
		return key.(*KeyContext), true
	}
	return nil, false
}

// Put caches a key. If the key is active it becomes the context's active key.
func (c *KeyChain) Put(key *KeyContext) {
	c.keys.Store(key.KeyID, key)
	if key.Active() {
		c.mu.Lock()
		c.active[key.ContextID] = key.KeyID
		c.mu.Unlock()
	}
}

// Retire marks a cached key retired and clears the context's active pointer
// if it still references this key.
func (c *KeyChain) Retire(keyID uuid.UUID) {
	key, ok := c.Get(keyID)
	if !ok {
		return
	}
	key.Status = KeyStatusRetired

	c.mu.Lock()
	if c.active[key.ContextID] == keyID {
		delete(c.active, key.ContextID)
	}
	c.mu.Unlock()
}

// Close securely clears all cached key material.
func (c *KeyChain) Close() {
	c.keys.Range(func(_, value any) bool {
		if key, ok := value.(*KeyContext); ok {
			Zero(key.Key)
		}
		return true
	})
	c.keys.Clear()

	c.mu.Lock()
	c.active = make(map[string]uuid.UUID)
	c.mu.Unlock()
}
