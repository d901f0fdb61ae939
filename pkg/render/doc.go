// Package render walks a validated manifest and produces the output
// tree, isolating per-node failures.
//
// Render never returns an error and never lets a panic escape: the
// only failure that prevents a render from happening at all is a
// failed validation, which is the caller's gate. Everything that goes
// wrong inside a pass is captured in the output tree itself:
//
//   - a node whose (type, version) cannot be resolved becomes a
//     fallback node carrying the original id/type and a short reason
//   - a node whose factory fails or panics during Build becomes an
//     error node carrying the captured message
//   - an undefined theme token degrades to the factory's built-in
//     default and a warning
//
// # Ordering
//
// Sibling nodes are scheduled for resolution independently and do not
// block one another. Output positions are reserved by node index
// before any resolution starts; each accepted result is written into
// its slot when ready, never appended on arrival. Output order
// therefore always equals manifest array order, regardless of the
// order in which asynchronous resolutions complete.
//
// # Prop Merging
//
// Props merge in priority order: explicit node props > theme-derived
// props > factory default props. Explicit always wins. A string prop
// of the form "@theme:token.name" resolves through the theme
// inheritance chain; if the token is undefined everywhere, the
// factory default is kept. Theme tokens namespaced "<type>.<prop>"
// feed the theme-derived level for nodes of that type.
//
// Every render pass is traced with an OpenTelemetry span carrying the
// manifest id and per-status node counts.
package render
