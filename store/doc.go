// Package store provides the content-addressed blob stores that memoize
// experiment results and hold mid-task checkpoints.
//
// # Keys
//
// Entries are addressed by Key, the hex SHA-256 digest of a
// length-prefixed (identity, payload) envelope, see DeriveKey. Two
// experiments never share keys as long as their identities differ, and
// the same identity with the same canonical payload always lands on the
// same entry, across processes and machines.
//
// # Backends
//
//   - SQLiteStore: the durable default. One file holds any number of
//     named tables, so a run's cache and checkpoint entries can share a
//     file without sharing a namespace. Writes commit before Set returns.
//   - MemoryStore: ephemeral, for tests and single-process runs.
//   - RedisStore: a shared backend for teams pointing several machines
//     at one cache.
//
// # Higher-order caching
//
// CachedFunc wraps an expensive function with a store: calls are keyed
// by their arguments, hits skip the function entirely, and the ForceRun
// and ForceCache options invert either side of that bargain.
package store
