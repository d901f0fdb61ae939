// Package bundle packages a manifest for hand-off: the manifest
// document, its referenced static assets, and generated human-readable
// documentation of the components used.
//
// Export is a pure data transform — no network calls. Assets come from
// an AssetSource collaborator; a missing asset is recorded in the
// bundle report rather than failing the export, mirroring the
// engine's per-node failure isolation.
//
// The archive layout is:
//
//	manifest.json
//	COMPONENTS.md
//	assets/<path>...
package bundle
