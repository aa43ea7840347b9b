package store

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// Key addresses one entry. Keys are hex-encoded SHA-256 digests, safe to
// embed in file names, SQL statements and Redis keys.
type Key string

var (
	// ErrNotFound reports a key with no entry. It is the expected miss
	// condition, not a failure.
	ErrNotFound = errors.New("entry not found")

	// ErrCacheMiss reports a forced cache lookup that found no entry.
	ErrCacheMiss = errors.New("result not cached")
)

// Store is a content-addressed blob store. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores the blob under key, replacing any previous entry.
	Set(ctx context.Context, key Key, value []byte) error

	// Contains reports whether an entry exists under key.
	Contains(ctx context.Context, key Key) (bool, error)

	// Remove deletes the entry under key. Removing an absent key is
	// not an error.
	Remove(ctx context.Context, key Key) error

	// Close releases the store's resources.
	Close() error
}

// DeriveKey computes the key for a payload owned by the named identity.
// Both fields are length-prefixed before hashing so no two (identity,
// payload) pairs collide by concatenation.
func DeriveKey(identity string, payload []byte) Key {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(identity)))
	h.Write(n[:])
	h.Write([]byte(identity))
	binary.BigEndian.PutUint64(n[:], uint64(len(payload)))
	h.Write(n[:])
	h.Write(payload)
	return Key(hex.EncodeToString(h.Sum(nil)))
}
