// Package store defines the manifest storage collaborator contract and
// ships three implementations.
//
// The engine itself requires only two operations: Get by (id, version)
// and Put. Persistence strategy, version retention, and concurrency
// control of the backing store remain the store's business.
//
//   - MemoryStore: in-process map, used by tests and the dev server
//   - CachedStore: a (id, version)-keyed TTL cache decorating any Store
//   - S3Store: manifests as JSON objects in an S3 bucket
//
// A missing manifest is reported as error code M551; use IsNotFound to
// branch on it.
package store
