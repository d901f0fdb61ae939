// Package registry maps (type, version) pairs to component factories.
//
// A Registry is the authoritative source of component implementations
// for a render pass. It is always constructed explicitly and passed
// into the renderer — there is no ambient global registry — so tenants
// can run isolated registries and tests stay deterministic. Entries are
// populated only through explicit Register calls at startup, never
// from untrusted runtime strings.
//
// # Registration
//
// Registration is idempotent: re-registering the identical factory for
// an existing key is a no-op. Registering a different factory for an
// existing key is allowed, emits a collision warning, and the last
// write wins. Writes are expected from a single bootstrap context;
// reads are safe under concurrent render passes.
//
// # Resolution
//
// Resolve attempts an exact (type, version) match first. When no
// version is requested, the highest registered semantic version for
// the type wins; versions that do not parse as semver sort below all
// valid ones, with a lexicographic tie-break. When a specific version
// is requested and absent, the registry fails closed rather than
// guessing a compatible version.
//
// # Lazy Factories
//
// Factories can be declared as loaders and resolved on first use.
// Concurrent Resolve calls for the same unresolved key during an
// in-flight load are coalesced into a single underlying load, and all
// callers receive the same eventual factory. Resolved factories are
// cached for the lifetime of the registry.
package registry
