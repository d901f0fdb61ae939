// Package components ships the builtin component library: the stock
// factories every project starts with (header, hero, text, image,
// section, button, card, footer).
//
// RegisterAll wires the set into a registry at version 1.0.0 with
// defaults and prop schemas. Projects extend or shadow individual
// types by registering their own factories; registry semantics make a
// later registration for the same type and version win.
package components
