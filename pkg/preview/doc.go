// Package preview wraps the renderer for live authoring.
//
// A Harness accepts manifest mutations, debounces them over a short
// window, and triggers a fresh render pass per settled mutation burst.
// Every pass carries a monotonically increasing generation; if a new
// pass starts before a previous one's resolutions have settled, any
// result completing for a stale generation is discarded on arrival and
// never applied to the displayed output. There is no hard abort of
// in-flight work — staleness disregard is the only cancellation
// mechanism, which is what keeps out-of-order async completions from
// flickering the preview.
//
// The harness also captures an ordered log of interaction events
// (component id, action, payload) from the host and exposes them via a
// callback. It records, it never interprets.
//
// Presentation modes (split, modal, hidden) are carried for host
// integration; they do not affect rendering.
package preview
