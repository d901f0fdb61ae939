// Package theme resolves design tokens through an inheritance chain.
//
// A token lookup walks four levels and returns the first defined
// value:
//
//  1. node-level override (authoring escape hatch on a single node)
//  2. manifest-level theme tokens
//  3. brand defaults (scoped per brand id, possibly fetched from an
//     external Source)
//  4. global defaults
//
// A token undefined at every level resolves to a documented sentinel
// (nil, false) rather than an error; the renderer treats it as "use the
// factory's built-in default". Missing tokens escalate to warnings at
// most, never to failures.
package theme
