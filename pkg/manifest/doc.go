// Package manifest defines the declarative page document consumed by
// the Maquette engine, its exchange codec, and its validator.
//
// A Manifest describes a page as an ordered tree of typed, versioned
// component nodes plus a theme block and SEO-like metadata. The engine
// never mutates a manifest: authoring mutations produce a new version
// or a new in-memory draft that gets re-validated.
//
// # Exchange Format
//
// Manifests are exchanged as JSON. Parse and Encode are exact inverses
// for any manifest that passed validation:
//
//	m, err := manifest.Parse(data)
//	out, err := m.Encode()
//
// YAML ingestion is supported for hand-authored manifests via
// ParseYAML; output is always JSON.
//
// # Validation
//
// Validate checks structural and referential integrity before a render:
// required top-level fields, tree-wide node id uniqueness, and the
// mandatory non-empty owning-tenant identifier. Unknown component types
// are warnings only; rendering proceeds with fallback nodes for them.
// Validate never panics and always returns a structured Result.
package manifest
