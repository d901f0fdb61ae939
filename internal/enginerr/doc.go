// Package enginerr provides structured errors for the Maquette engine.
//
// Every error has a code (e.g. "M101"), a category, a short message,
// and optional detail, suggestion, and documentation link. Codes are
// registered centrally in registry.go so that error text stays
// consistent across the engine, the HTTP API, and the CLI.
//
// Usage:
//
//	return enginerr.New("M201").
//	    WithDetail("component 'banner-x@2.0.0' is not registered").
//	    WithSuggestion("register the component or pin a released version")
//
// Errors support errors.Is/As through Unwrap.
package enginerr
