// Package devserver runs the authoring preview server: an HTTP API for
// validating, storing and rendering manifests, a WebSocket channel that
// pushes settled render passes to connected preview surfaces, and a
// filesystem watcher that feeds manifest edits into the debounced
// preview harness.
//
// The server is a development and authoring tool. It binds to localhost
// by default and applies no authentication.
package devserver
